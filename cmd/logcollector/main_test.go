package main

import (
	"testing"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "monitor", "status"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("Find(%q) = %v, %v", name, cmd, err)
		}
	}
}

func TestRunCmd_Flags(t *testing.T) {
	root := newRootCmd()
	cmd, _, err := root.Find([]string{"run"})
	if err != nil {
		t.Fatalf("Find(run): %v", err)
	}
	if err := cmd.ParseFlags([]string{"--filter", "ERROR,WARN", "--clean", "--clear-every", "0"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	filter, err := cmd.Flags().GetStringSlice("filter")
	if err != nil || len(filter) != 2 || filter[0] != "ERROR" || filter[1] != "WARN" {
		t.Fatalf("filter = %v, %v", filter, err)
	}
	if !cmd.Flags().Changed("clean") || !cmd.Flags().Changed("clear-every") {
		t.Fatalf("changed flags not tracked")
	}
	if cmd.Flags().Changed("capture") {
		t.Fatalf("capture should be unchanged")
	}
}
