package ripple

import "testing"

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "screenshot", "label": "initial"},
			{"action": "scroll", "dy": 240},
			{"action": "wait", "frames": 3},
			{"action": "progress", "progress": 0.75}
		]
	}`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "screenshot" || runner.steps[0].Label != "initial" {
		t.Error("step 0 mismatch")
	}
	if runner.steps[1].Action != "scroll" || runner.steps[1].DY != 240 {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "wait" || runner.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
	if runner.steps[3].Action != "progress" || runner.steps[3].Progress != 0.75 {
		t.Error("step 3 mismatch")
	}
}

func TestLoadTestScript_Invalid(t *testing.T) {
	_, err := LoadTestScript([]byte(`not json`))
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadTestScript_Empty(t *testing.T) {
	_, err := LoadTestScript([]byte(`{"steps": []}`))
	if err == nil {
		t.Error("expected error for empty steps")
	}
}

func TestLoadTestScript_UnknownAction(t *testing.T) {
	_, err := LoadTestScript([]byte(`{"steps": [{"action": "click"}]}`))
	if err == nil {
		t.Error("expected error for unknown action")
	}
}

func scriptedScene(t *testing.T, script string) (*Scene, *TestRunner) {
	t.Helper()
	runner, err := LoadTestScript([]byte(script))
	if err != nil {
		t.Fatal(err)
	}
	s := NewScene()
	s.SetScroller(NewScroller(ScrollConfig{Pages: 5}, 100))
	s.SetTestRunner(runner)
	return s, runner
}

func TestRunnerStep_ScrollWaitScreenshot(t *testing.T) {
	s, runner := scriptedScene(t, `{"steps": [
		{"action": "scroll", "dy": 100},
		{"action": "wait", "frames": 3},
		{"action": "screenshot", "label": "mid"}
	]}`)

	s.Step(1.0 / 60)
	if got := s.Scroller().Progress(); got != 0.25 {
		t.Fatalf("progress after scroll = %v, want 0.25", got)
	}
	for i := 0; i < 3; i++ {
		s.Step(1.0 / 60)
		if len(s.screenshotQueue) != 0 {
			t.Fatalf("screenshot queued during wait (frame %d)", i)
		}
	}
	if runner.Done() {
		t.Fatal("runner done before the screenshot step")
	}
	s.Step(1.0 / 60)
	if len(s.screenshotQueue) != 1 || s.screenshotQueue[0] != "mid" {
		t.Errorf("screenshot queue = %v, want [mid]", s.screenshotQueue)
	}
	if !runner.Done() {
		t.Error("runner should be done")
	}
}

func TestRunnerStep_Progress(t *testing.T) {
	s, runner := scriptedScene(t, `{"steps": [{"action": "progress", "progress": 0.5}]}`)
	var seen float64
	s.AddEngine(engineFunc(func(f *Frame) { seen = f.Progress }))
	s.Step(1.0 / 60)
	if seen != 0.5 {
		t.Errorf("engine saw progress %v, want 0.5", seen)
	}
	if !runner.Done() {
		t.Error("runner should be done")
	}
}

func TestRunnerStep_WaitsForInjectedScroll(t *testing.T) {
	s, _ := scriptedScene(t, `{"steps": [{"action": "screenshot", "label": "x"}]}`)
	s.Scroller().InjectScroll(10)
	s.Scroller().InjectScroll(10)

	for i := 0; i < 2; i++ {
		s.Step(1.0 / 60)
		if len(s.screenshotQueue) != 0 {
			t.Fatalf("runner advanced with scrolls pending (frame %d)", i)
		}
	}
	s.Step(1.0 / 60)
	if len(s.screenshotQueue) != 1 {
		t.Errorf("screenshot queue = %v, want one entry", s.screenshotQueue)
	}
}

func TestRunnerStep_DoneIsIdle(t *testing.T) {
	s, runner := scriptedScene(t, `{"steps": [{"action": "wait", "frames": 1}]}`)
	s.Step(1.0 / 60)
	if !runner.Done() {
		t.Fatal("one-frame wait should finish on its own frame")
	}
	s.Step(1.0 / 60)
	if len(s.screenshotQueue) != 0 {
		t.Error("done runner queued work")
	}
}
