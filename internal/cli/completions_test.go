package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteSSLModes(t *testing.T) {
	got, directive := completeSSLModes(nil, nil, "ver")
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v, want NoFileComp", directive)
	}
	if len(got) != 2 || got[0] != "verify-ca" || got[1] != "verify-full" {
		t.Errorf("completeSSLModes(ver) = %v", got)
	}
}

func TestCompleteTemplateNames(t *testing.T) {
	got, _ := completeTemplateNames(nil, nil, "")
	if len(got) == 0 {
		t.Fatal("expected at least one template")
	}
	if got[0] != "default" {
		t.Errorf("first template = %q, want default", got[0])
	}

	got, _ = completeTemplateNames(nil, nil, "zzz")
	if len(got) != 0 {
		t.Errorf("completeTemplateNames(zzz) = %v, want none", got)
	}
}

func TestCompleteDirectories(t *testing.T) {
	_, directive := completeDirectories(nil, nil, "")
	if directive != cobra.ShellCompDirectiveFilterDirs {
		t.Errorf("directive = %v, want FilterDirs", directive)
	}
	_, directive = completeDirectories(nil, []string{"already"}, "")
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v, want NoFileComp", directive)
	}
}
