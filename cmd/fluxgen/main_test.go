package main

import "testing"

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()

	want := map[string][]string{
		"serve":   nil,
		"migrate": {"down", "up", "version"},
	}
	for name, subs := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("missing %q command: %v", name, err)
		}
		got := make(map[string]bool)
		for _, c := range cmd.Commands() {
			got[c.Name()] = true
		}
		for _, s := range subs {
			if !got[s] {
				t.Fatalf("%s: missing subcommand %q", name, s)
			}
		}
	}

	down, _, err := root.Find([]string{"migrate", "down"})
	if err != nil {
		t.Fatalf("find migrate down: %v", err)
	}
	if f := down.Flags().Lookup("steps"); f == nil || f.DefValue != "1" {
		t.Fatalf("migrate down should default to one step")
	}
}
