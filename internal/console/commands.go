package console

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"scenedebug/internal/engine"
	"scenedebug/internal/inspect"
	"scenedebug/internal/scene"
	"scenedebug/internal/watch"

	"github.com/rodaine/table"
)

func builtins() []command {
	return []command{
		{
			names: []string{"help", "?"},
			usage: "help",
			help:  "list commands",
			f: func(c *Console, w io.Writer, _ []string) error {
				t := table.New("Command", "Usage", "Description").WithWriter(w)
				for _, cmd := range c.commands {
					t.AddRow(strings.Join(cmd.names, ", "), cmd.usage, cmd.help)
				}
				t.Print()
				return nil
			},
		},
		{
			names: []string{"ls"},
			usage: "ls [path]",
			help:  "list scene roots or the members of path",
			f:     cmdLs,
		},
		{
			names: []string{"tree"},
			usage: "tree [path] [depth]",
			help:  "print the explorer tree, or path expanded depth levels",
			f:     cmdTree,
		},
		{
			names: []string{"get", "p"},
			usage: "get <path>",
			help:  "print one value",
			f: func(c *Console, w io.Writer, args []string) error {
				if len(args) != 1 {
					return usage("get")
				}
				ch, err := c.chain(args[0])
				if err != nil {
					return err
				}
				printNode(w, c.Explorer.Describe(ch))
				return nil
			},
		},
		{
			names: []string{"set"},
			usage: "set <path> <value>",
			help:  "assign a value (vectors as x,y,z, references as #uid)",
			f: func(c *Console, w io.Writer, args []string) error {
				if len(args) < 2 {
					return usage("set")
				}
				ch, err := c.chain(args[0])
				if err != nil {
					return err
				}
				if err := c.Mutator.SetFromString(ch, strings.Join(args[1:], " ")); err != nil {
					return err
				}
				printNode(w, c.Explorer.Describe(ch))
				return nil
			},
		},
		{
			names: []string{"undo"},
			usage: "undo",
			help:  "revert the last set",
			f: func(c *Console, w io.Writer, _ []string) error {
				ch, err := c.Mutator.Undo()
				if err != nil {
					return err
				}
				printNode(w, c.Explorer.Describe(ch))
				return nil
			},
		},
		{
			names: []string{"expand"},
			usage: "expand <path>",
			help:  "show the members of path in tree",
			f: func(c *Console, w io.Writer, args []string) error {
				return cmdExpand(c, w, args, false)
			},
		},
		{
			names: []string{"collapse"},
			usage: "collapse <path>",
			help:  "hide the members of path in tree",
			f: func(c *Console, w io.Writer, args []string) error {
				return cmdExpand(c, w, args, true)
			},
		},
		{
			names: []string{"call"},
			usage: "call <path>",
			help:  "evaluate a property node in the tree",
			f: func(c *Console, w io.Writer, args []string) error {
				if len(args) != 1 {
					return usage("call")
				}
				ch, err := c.chain(args[0])
				if err != nil {
					return err
				}
				c.Explorer.State().MarkEvaluated(ch.UniqueID())
				printNode(w, c.Explorer.Describe(ch))
				return nil
			},
		},
		{
			names: []string{"page"},
			usage: "page <path> <start>",
			help:  "scroll a collection",
			f:     cmdPage,
		},
		{
			names: []string{"jump"},
			usage: "jump <path>",
			help:  "follow a reference or uid to its object",
			f:     cmdJump,
		},
		{
			names: []string{"find"},
			usage: "find <text>",
			help:  "search objects by name or tag",
			f:     cmdFind,
		},
		{
			names: []string{"watch", "w"},
			usage: "watch [add <path> | rm <id> | list | clear]",
			help:  "manage the watch list",
			f:     cmdWatch,
		},
		{
			names: []string{"eval", "!"},
			usage: "eval <go expression or statement>",
			help:  "run Go against the scene (package scene is imported)",
			raw:   true,
			f: func(c *Console, w io.Writer, args []string) error {
				if args[0] == "" {
					return usage("eval")
				}
				out, err := c.Script.Eval(args[0])
				if err != nil {
					return err
				}
				if out != "" {
					fmt.Fprintln(w, out)
				}
				return nil
			},
		},
		{
			names: []string{"history"},
			usage: "history [n]",
			help:  "show the last n console messages",
			f:     cmdHistory,
		},
		{
			names: []string{"clear"},
			usage: "clear",
			help:  "clear the console history",
			f: func(c *Console, _ io.Writer, _ []string) error {
				c.History.Clear()
				return nil
			},
		},
		{
			names: []string{"settings"},
			usage: "settings [name [value]]",
			help:  "show or change settings",
			f:     cmdSettings,
		},
		{
			names: []string{"save"},
			usage: "save [file]",
			help:  "write the scene to file (default: the loaded scene path)",
			f:     cmdSave,
		},
	}
}

func printNode(w io.Writer, n *inspect.Node) {
	line := fmt.Sprintf("%s = %s", n.Path, n.Value)
	if n.Type != "" {
		line += " (" + n.Type + ")"
	}
	if n.Jump != "" {
		line += " -> " + n.Jump
	}
	if n.Err != "" {
		line += " !" + n.Err
	}
	fmt.Fprintln(w, line)
}

func cmdLs(c *Console, w io.Writer, args []string) error {
	if len(args) == 0 {
		s := c.Explorer.Scene()
		if s == nil {
			return errors.New("no scene loaded")
		}
		t := table.New("UID", "Name", "Active", "Components", "Children").WithWriter(w)
		for _, g := range s.Roots() {
			t.AddRow(g.UID, g.Name, g.Active, componentNames(g), len(g.Children))
		}
		t.Print()
		return nil
	}
	if len(args) != 1 {
		return usage("ls")
	}
	ch, err := c.chain(args[0])
	if err != nil {
		return err
	}
	n := c.Explorer.BuildTree(ch, 1)
	if !n.Expandable {
		printNode(w, n)
		return nil
	}
	t := table.New("Name", "Type", "Value").WithWriter(w)
	for _, child := range n.Children {
		value := child.Value
		if child.Err != "" {
			value += " !" + child.Err
		}
		t.AddRow(child.Label, child.Type, value)
	}
	t.Print()
	if n.Note != "" {
		fmt.Fprintf(w, "(%s)\n", n.Note)
	}
	printPage(w, n.Page)
	return nil
}

func componentNames(g *engine.GameObject) string {
	var names []string
	for _, comp := range g.Components() {
		name := fmt.Sprintf("%T", comp)
		names = append(names, name[strings.LastIndexByte(name, '.')+1:])
	}
	return strings.Join(names, ",")
}

func printPage(w io.Writer, p *inspect.Page) {
	if p == nil || (p.Start == 0 && p.End == p.Total && !p.More) {
		return
	}
	total := strconv.Itoa(p.Total)
	if p.More {
		total += "+"
	}
	fmt.Fprintf(w, "showing %d-%d of %s\n", p.Start, p.End-1, total)
}

func cmdTree(c *Console, w io.Writer, args []string) error {
	if len(args) == 0 {
		return inspect.WriteText(w, c.Explorer.Build())
	}
	if len(args) > 2 {
		return usage("tree")
	}
	depth := 1
	if len(args) == 2 {
		d, err := strconv.Atoi(args[1])
		if err != nil || d < 0 {
			return usage("tree")
		}
		depth = d
	}
	ch, err := c.chain(args[0])
	if err != nil {
		return err
	}
	return inspect.WriteText(w, []*inspect.Node{c.Explorer.BuildTree(ch, depth)})
}

func cmdExpand(c *Console, w io.Writer, args []string, collapse bool) error {
	if len(args) != 1 {
		if collapse {
			return usage("collapse")
		}
		return usage("expand")
	}
	ch, err := c.chain(args[0])
	if err != nil {
		return err
	}
	if collapse {
		c.Explorer.State().Collapse(ch.UniqueID())
		fmt.Fprintf(w, "collapsed %s\n", ch)
		return nil
	}
	c.Explorer.State().Expand(ch.UniqueID())
	fmt.Fprintf(w, "expanded %s\n", ch)
	return nil
}

func cmdPage(c *Console, w io.Writer, args []string) error {
	if len(args) != 2 {
		return usage("page")
	}
	start, err := strconv.Atoi(args[1])
	if err != nil {
		return usage("page")
	}
	ch, err := c.chain(args[0])
	if err != nil {
		return err
	}
	id := ch.UniqueID()
	c.Explorer.State().SetPageStart(id, start)
	c.Explorer.State().Expand(id)
	n := c.Explorer.BuildTree(ch, 0)
	if n.Page == nil {
		return fmt.Errorf("%s is not a collection", ch)
	}
	fmt.Fprintf(w, "showing %d-%d of %d\n", n.Page.Start, n.Page.End-1, n.Page.Total)
	return nil
}

func cmdJump(c *Console, w io.Writer, args []string) error {
	if len(args) != 1 {
		return usage("jump")
	}
	ch, err := c.chain(args[0])
	if err != nil {
		return err
	}
	n := c.Explorer.Describe(ch)
	if n.Jump == "" {
		return fmt.Errorf("%s does not point at a live object", ch)
	}
	target, err := c.chain(n.Jump)
	if err != nil {
		return err
	}
	c.Explorer.State().Expand(target.UniqueID())
	return inspect.WriteText(w, []*inspect.Node{c.Explorer.BuildTree(target, 0)})
}

func cmdFind(c *Console, w io.Writer, args []string) error {
	if len(args) != 1 {
		return usage("find")
	}
	s := c.Explorer.Scene()
	if s == nil {
		return errors.New("no scene loaded")
	}
	needle := strings.ToLower(args[0])
	t := table.New("UID", "Name", "Parent", "Tags").WithWriter(w)
	found := 0
	for g := range s.All() {
		if !g.Alive() || !matches(g, needle) {
			continue
		}
		parent := ""
		if g.Parent != nil {
			parent = g.Parent.String()
		}
		t.AddRow(g.UID, g.Name, parent, strings.Join(g.Tags, ","))
		found++
	}
	if found == 0 {
		fmt.Fprintf(w, "nothing matches %q\n", args[0])
		return nil
	}
	t.Print()
	return nil
}

func matches(g *engine.GameObject, needle string) bool {
	if strings.Contains(strings.ToLower(g.Name), needle) {
		return true
	}
	for _, tag := range g.Tags {
		if strings.EqualFold(tag, needle) {
			return true
		}
	}
	return false
}

func cmdWatch(c *Console, w io.Writer, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "list":
		if c.Watches.Len() == 0 {
			fmt.Fprintln(w, "no watches")
			return nil
		}
		watch.WriteTable(w, c.Watches.Snapshot())
		return nil
	case "add":
		if len(args) != 2 {
			return usage("watch")
		}
		ch, err := c.chain(args[1])
		if err != nil {
			return err
		}
		wt := c.Watches.Add(ch)
		fmt.Fprintf(w, "watching %s %s = %s\n", wt.ShortID(), wt.Path, wt.Value)
		return nil
	case "rm":
		if len(args) != 2 {
			return usage("watch")
		}
		wt, err := c.Watches.Lookup(args[1])
		if err != nil {
			return err
		}
		c.Watches.Remove(wt.ID)
		fmt.Fprintf(w, "removed %s\n", wt.ShortID())
		return nil
	case "clear":
		c.Watches.Clear()
		return nil
	}
	return usage("watch")
}

func cmdHistory(c *Console, w io.Writer, args []string) error {
	n := 20
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return usage("history")
		}
		n = v
	} else if len(args) > 1 {
		return usage("history")
	}
	t := table.New("Time", "Level", "Count", "Message").WithWriter(w)
	for _, m := range c.History.Tail(n) {
		t.AddRow(m.Time.Format("15:04:05"), m.Severity, m.Count, m.Text)
	}
	t.Print()
	return nil
}

func cmdSettings(c *Console, w io.Writer, args []string) error {
	s := c.Settings.Get()
	switch len(args) {
	case 0:
		t := table.New("Setting", "Value").WithWriter(w)
		for _, f := range s.Fields() {
			t.AddRow(f.Name, f.Value)
		}
		t.Print()
		return nil
	case 1:
		for _, f := range s.Fields() {
			if strings.EqualFold(f.Name, args[0]) {
				fmt.Fprintf(w, "%s = %s\n", f.Name, f.Value)
				return nil
			}
		}
		return fmt.Errorf("unknown setting %q", args[0])
	}
	if err := c.Settings.Set(args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	s = c.Settings.Get()
	for _, f := range s.Fields() {
		if strings.EqualFold(f.Name, args[0]) {
			fmt.Fprintf(w, "%s = %s\n", f.Name, f.Value)
		}
	}
	return nil
}

func cmdSave(c *Console, w io.Writer, args []string) error {
	if len(args) > 1 {
		return usage("save")
	}
	s := c.Explorer.Scene()
	if s == nil {
		return errors.New("no scene loaded")
	}
	path := c.Settings.Get().ScenePath
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return usage("save")
	}
	if err := scene.Save(s, path); err != nil {
		return err
	}
	fmt.Fprintf(w, "saved %s (%d objects)\n", path, s.Count())
	return nil
}
