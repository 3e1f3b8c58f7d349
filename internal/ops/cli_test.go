package ops

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

// helper to restore stubs after each test
func withOpsStubs(t *testing.T, stubs func()) func() {
	t.Helper()
	oldBuild := fnComposeBuild
	oldUp := fnComposeUp
	oldDown := fnComposeDown
	oldClean := fnComposeClean
	oldVerify := fnVerifyClean
	oldStatus := fnShowStatus
	oldLogs := fnComposeLogs
	oldPreflight := fnPreflight
	oldBundle := fnBundle
	oldWait := fnWaitHealthy
	stubs()
	return func() {
		fnComposeBuild = oldBuild
		fnComposeUp = oldUp
		fnComposeDown = oldDown
		fnComposeClean = oldClean
		fnVerifyClean = oldVerify
		fnShowStatus = oldStatus
		fnComposeLogs = oldLogs
		fnPreflight = oldPreflight
		fnBundle = oldBundle
		fnWaitHealthy = oldWait
	}
}

func TestMainWithArgs_NoArgs_ShowsHelpExit0(t *testing.T) {
	code := MainWithArgs([]string{})
	if code != 0 {
		t.Fatalf("expected exit code 0 for bare invocation, got %d", code)
	}
}

func TestMainWithArgs_Help_Exit0(t *testing.T) {
	for _, args := range [][]string{{"help"}, {"--help"}} {
		if code := MainWithArgs(args); code != 0 {
			t.Fatalf("%v: expected exit code 0, got %d", args, code)
		}
	}
}

func TestMainWithArgs_UnknownCommand_Exit2(t *testing.T) {
	code := MainWithArgs([]string{"wat"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for unknown command, got %d", code)
	}
}

func TestMainWithArgs_BuildSuccess_Exit0(t *testing.T) {
	called := 0
	cleanup := withOpsStubs(t, func() {
		fnComposeBuild = func(ctx context.Context, cfg *Config) error { called++; return nil }
	})
	defer cleanup()
	if code := MainWithArgs([]string{"build"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if called != 1 {
		t.Fatalf("build action not invoked")
	}
}

func TestMainWithArgs_ActionError_Exit1(t *testing.T) {
	cleanup := withOpsStubs(t, func() {
		fnComposeBuild = func(ctx context.Context, cfg *Config) error { return errors.New("boom") }
	})
	defer cleanup()
	if code := MainWithArgs([]string{"build"}); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestMainWithArgs_ToolExitCodePassesThrough(t *testing.T) {
	// A real ExitError, the same shape runCompose surfaces.
	toolErr := exec.Command("sh", "-c", "exit 3").Run()
	var ee *exec.ExitError
	if !errors.As(toolErr, &ee) {
		t.Fatalf("fixture did not produce ExitError: %v", toolErr)
	}
	cleanup := withOpsStubs(t, func() {
		fnComposeBuild = func(ctx context.Context, cfg *Config) error { return toolErr }
	})
	defer cleanup()
	if code := MainWithArgs([]string{"build"}); code != 3 {
		t.Fatalf("expected exit code 3 from wrapped tool, got %d", code)
	}
}

func TestRun_UpBuildsFirst(t *testing.T) {
	var calls []string
	cleanup := withOpsStubs(t, func() {
		fnComposeBuild = func(ctx context.Context, cfg *Config) error { calls = append(calls, "build"); return nil }
		fnComposeUp = func(ctx context.Context, cfg *Config) error { calls = append(calls, "up"); return nil }
		fnWaitHealthy = func(ctx context.Context, cfg *Config) error { t.Fatalf("wait must not run without --wait"); return nil }
	})
	defer cleanup()
	if code := MainWithArgs([]string{"up"}); code != 0 {
		t.Fatalf("up: exit code %d", code)
	}
	if len(calls) != 2 || calls[0] != "build" || calls[1] != "up" {
		t.Fatalf("up must build first, got %v", calls)
	}
}

func TestRun_UpBuildFailureStopsUp(t *testing.T) {
	cleanup := withOpsStubs(t, func() {
		fnComposeBuild = func(ctx context.Context, cfg *Config) error { return errors.New("no daemon") }
		fnComposeUp = func(ctx context.Context, cfg *Config) error { t.Fatalf("up must not run after failed build"); return nil }
	})
	defer cleanup()
	if code := MainWithArgs([]string{"up"}); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRun_UpWaitFlag(t *testing.T) {
	waited := 0
	cleanup := withOpsStubs(t, func() {
		fnComposeBuild = func(ctx context.Context, cfg *Config) error { return nil }
		fnComposeUp = func(ctx context.Context, cfg *Config) error { return nil }
		fnWaitHealthy = func(ctx context.Context, cfg *Config) error { waited++; return nil }
	})
	defer cleanup()
	if code := MainWithArgs([]string{"up", "--wait"}); code != 0 {
		t.Fatalf("up --wait: exit code %d", code)
	}
	if waited != 1 {
		t.Fatalf("wait not invoked")
	}
}

func TestRun_CleanSequence(t *testing.T) {
	var calls []string
	cleanup := withOpsStubs(t, func() {
		fnComposeDown = func(ctx context.Context, cfg *Config) error { calls = append(calls, "down"); return nil }
		fnComposeClean = func(ctx context.Context, cfg *Config) error { calls = append(calls, "clean"); return nil }
		fnVerifyClean = func(ctx context.Context, cfg *Config) { calls = append(calls, "verify") }
	})
	defer cleanup()
	if code := MainWithArgs([]string{"clean"}); code != 0 {
		t.Fatalf("clean: exit code %d", code)
	}
	want := []string{"down", "clean", "verify"}
	if len(calls) != len(want) {
		t.Fatalf("clean sequence %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("clean sequence %v, want %v", calls, want)
		}
	}
}

func TestRun_LogsFollowFlag(t *testing.T) {
	var gotFollow []bool
	cleanup := withOpsStubs(t, func() {
		fnComposeLogs = func(ctx context.Context, cfg *Config, follow bool) error {
			gotFollow = append(gotFollow, follow)
			return nil
		}
	})
	defer cleanup()
	if code := MainWithArgs([]string{"logs"}); code != 0 {
		t.Fatalf("logs: exit code %d", code)
	}
	if code := MainWithArgs([]string{"logs", "-f"}); code != 0 {
		t.Fatalf("logs -f: exit code %d", code)
	}
	if len(gotFollow) != 2 || gotFollow[0] || !gotFollow[1] {
		t.Fatalf("follow flags %v, want [false true]", gotFollow)
	}
}

func TestRun_BundleFlags(t *testing.T) {
	var gotWeights, gotVersion, gotOut string
	cleanup := withOpsStubs(t, func() {
		fnBundle = func(cfg *Config, weights, version, out string) error {
			gotWeights, gotVersion, gotOut = weights, version, out
			return nil
		}
	})
	defer cleanup()
	args := []string{"bundle", "--weights", "runs/model.safetensors", "--version", "0.3.0", "--out", "elsewhere"}
	if code := MainWithArgs(args); code != 0 {
		t.Fatalf("bundle: exit code %d", code)
	}
	if gotWeights != "runs/model.safetensors" || gotVersion != "0.3.0" || gotOut != "elsewhere" {
		t.Fatalf("bundle flags not passed: %q %q %q", gotWeights, gotVersion, gotOut)
	}
}

func TestRun_BundleMissingWeights_Exit2(t *testing.T) {
	cleanup := withOpsStubs(t, func() {
		fnBundle = func(cfg *Config, weights, version, out string) error {
			t.Fatalf("bundle must not run without --weights")
			return nil
		}
	})
	defer cleanup()
	if code := MainWithArgs([]string{"bundle"}); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestPersistentFlagsReachConfig(t *testing.T) {
	var got Config
	cleanup := withOpsStubs(t, func() {
		fnComposeBuild = func(ctx context.Context, cfg *Config) error { got = *cfg; return nil }
	})
	defer cleanup()
	args := []string{"--project-dir", "/tmp/p", "--file", "alt.yaml", "--log-level", "debug", "build"}
	if code := MainWithArgs(args); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if got.ProjectDir != "/tmp/p" || got.ComposeFile != "alt.yaml" || got.LogLvl != "debug" {
		t.Fatalf("config not wired from flags: %+v", got)
	}
	SetLogLevel("info")
}

func TestExitCodeClassification(t *testing.T) {
	if c := exitCode(errors.New("plain")); c != 1 {
		t.Fatalf("plain error: %d", c)
	}
	if c := exitCode(errors.New("unknown command \"x\" for \"planetctl\"")); c != 2 {
		t.Fatalf("unknown command: %d", c)
	}
	if c := exitCode(errors.New("unknown flag: --frob")); c != 2 {
		t.Fatalf("unknown flag: %d", c)
	}
	if c := exitCode(errors.New("required flag(s) \"weights\" not set")); c != 2 {
		t.Fatalf("required flag: %d", c)
	}
}
