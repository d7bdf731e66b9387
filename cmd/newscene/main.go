package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"scenedebug/internal/components"
	"scenedebug/internal/engine"
	"scenedebug/internal/scene"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	force := flag.Bool("force", false, "overwrite an existing file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: go run ./cmd/newscene [-force] <scene.json>\n")
		fmt.Fprintf(os.Stderr, "Example: go run ./cmd/newscene assets/scenes/sample.json\n")
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	outPath := flag.Arg(0)
	if _, err := os.Stat(outPath); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists\n", outPath)
		os.Exit(1)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s := sampleScene()
	if err := scene.Save(s, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s with %d objects\n", outPath, s.Count())
	fmt.Printf("Inspect it with: go run ./cmd/scenedebug -scene %s\n", outPath)
}

// sampleScene covers every component type plus a parent/child pair and a
// cross-object reference, which is enough to try each explorer feature.
func sampleScene() *engine.Scene {
	s := engine.NewScene("sample")

	ground := engine.NewGameObject("Ground")
	ground.Transform.Scale = rl.NewVector3(20, 1, 20)
	ground.AddComponent(components.NewMeshRenderer("plane", []float32{1, 1}, components.NewMaterial("grass")))
	ground.AddComponent(components.NewBoxCollider(rl.NewVector3(1, 0.1, 1)))
	s.AddGameObject(ground)

	crate := engine.NewGameObject("Crate")
	crate.Tags = []string{"prop"}
	crate.Transform.Position = rl.NewVector3(3, 0.5, -2)
	crate.AddComponent(components.NewMeshRenderer("cube", []float32{1, 1, 1}, components.NewMaterial("wood")))
	crate.AddComponent(components.NewBoxCollider(rl.NewVector3(1, 1, 1)))
	crate.AddComponent(components.NewRigidbody())
	crate.AddComponent(&components.Rotator{Speed: 45})
	s.AddGameObject(crate)

	guard := engine.NewGameObject("Guard")
	guard.Tags = []string{"enemy"}
	guard.AddComponent(components.NewMeshRenderer("sphere", []float32{0.5}, nil))
	guard.AddComponent(components.NewSphereCollider(0.5))
	guard.AddComponent(&components.Patrol{
		Speed:     2,
		Target:    engine.RefTo(crate),
		TargetUID: crate.UID,
		Visits:    map[string]int{},
		Waypoints: []rl.Vector3{
			rl.NewVector3(-4, 0.5, -4),
			rl.NewVector3(4, 0.5, -4),
			rl.NewVector3(4, 0.5, 4),
			rl.NewVector3(-4, 0.5, 4),
		},
	})
	lantern := engine.NewGameObject("Lantern")
	lantern.Transform.Position = rl.NewVector3(0, 1, 0)
	lantern.AddComponent(components.NewPointLight())
	guard.AddChild(lantern)
	s.AddGameObject(guard)

	sun := engine.NewGameObject("Sun")
	sun.AddComponent(components.NewDirectionalLight())
	s.AddGameObject(sun)

	return s
}
