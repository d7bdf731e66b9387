package engine

import "testing"

func TestGameObjectRefGet(t *testing.T) {
	scene := NewScene("Test")
	obj := NewGameObject("Target")
	scene.AddGameObject(obj)

	ref := RefTo(obj)

	if found := ref.Get(scene); found != obj {
		t.Errorf("Get() failed: expected %v, got %v", obj, found)
	}
}

func TestGameObjectRefGetNil(t *testing.T) {
	scene := NewScene("Test")

	if (GameObjectRef{}).Get(scene) != nil {
		t.Error("Get() with UID=0 should return nil")
	}

	if (GameObjectRef{UID: 99999999}).Get(scene) != nil {
		t.Error("Get() with non-existent UID should return nil")
	}

	if (GameObjectRef{UID: 123}).Get(nil) != nil {
		t.Error("Get() with nil scene should return nil")
	}
}

func TestGameObjectRefGetDestroyed(t *testing.T) {
	scene := NewScene("Test")
	obj := NewGameObject("Doomed")
	scene.AddGameObject(obj)
	ref := RefTo(obj)

	obj.Destroy()

	if ref.Get(scene) != nil {
		t.Error("Get() should not resolve destroyed objects")
	}
}

func TestGameObjectRefSetClear(t *testing.T) {
	obj := NewGameObject("Target")
	var ref GameObjectRef

	if ref.IsValid() {
		t.Error("zero ref should be invalid")
	}
	if ref.String() != "none" {
		t.Errorf("Expected 'none', got %q", ref.String())
	}

	ref.Set(obj)
	if ref.UID != obj.UID {
		t.Errorf("Set() stored UID %d, expected %d", ref.UID, obj.UID)
	}

	ref.Set(nil)
	if ref.IsValid() {
		t.Error("Set(nil) should clear the reference")
	}

	ref.Set(obj)
	ref.Clear()
	if ref.UID != 0 {
		t.Error("Clear() should zero the UID")
	}
}
