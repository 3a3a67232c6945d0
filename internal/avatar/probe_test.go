package avatar

import "testing"

func TestExtractJob(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantID    string
		wantAsset string
	}{
		{"top-level id", `{"id":"abc"}`, "abc", ""},
		{"avatar_id", `{"avatar_id":"def"}`, "def", ""},
		{"nested data id", `{"data":{"id":"ghi","status":"pending"}}`, "ghi", ""},
		{"nested result avatar_id", `{"result":{"avatar_id":"jkl"}}`, "jkl", ""},
		{"empty id skipped", `{"id":"","avatar_id":"mno"}`, "mno", ""},
		{"direct glb", `{"glb_url":"https://models.example/a.glb"}`, "", "https://models.example/a.glb"},
		{"direct url", `{"url":"https://models.example/b"}`, "", "https://models.example/b"},
		{"nothing", `{"message":"queued"}`, "", ""},
		{"not an object", `["abc"]`, "", ""},
		{"invalid json", `nope`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, asset := ExtractJob([]byte(tt.body))
			if id != tt.wantID || asset != tt.wantAsset {
				t.Errorf("ExtractJob(%s) = %q, %q, want %q, %q", tt.body, id, asset, tt.wantID, tt.wantAsset)
			}
		})
	}
}

func TestFindAssetURL(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"direct key", `{"glb_url":"https://m.example/x.glb"}`, "https://m.example/x.glb"},
		{"direct key not glb falls through", `{"url":"https://m.example/x.png"}`, ""},
		{"nested under known key", `{"result":{"glb":"https://m.example/r.glb"}}`, "https://m.example/r.glb"},
		{"data urls", `{"data":{"urls":{"glb":"https://m.example/d.glb"}}}`, "https://m.example/d.glb"},
		{"data result when urls empty", `{"data":{"urls":{},"result":{"url":"https://m.example/e.glb"}}}`, "https://m.example/e.glb"},
		{"deep gltf", `{"meta":[{"files":["https://m.example/f.gltf"]}]}`, "https://m.example/f.gltf"},
		{"deep models path", `{"x":{"y":"https://cdn.example/models/123"}}`, "https://cdn.example/models/123"},
		{"pending", `{"status":"pending","progress":40}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindAssetURL([]byte(tt.body)); got != tt.want {
				t.Errorf("FindAssetURL(%s) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestExtractStatus(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"status":"pending"}`, "pending"},
		{`{"status":"","processingStatus":"FAILED"}`, "FAILED"},
		{`{"data":{"status":"error"}}`, "error"},
		{`{}`, ""},
	}
	for _, tt := range tests {
		if got := ExtractStatus([]byte(tt.body)); got != tt.want {
			t.Errorf("ExtractStatus(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		body      string
		wantState State
	}{
		{`{"status":"pending"}`, StatePolling},
		{`{"status":"Failed"}`, StateFailed},
		{`{"processingStatus":"ERROR"}`, StateFailed},
		{`{"status":"done","glb_url":"https://m.example/x.glb"}`, StateReady},
		{`{"status":"failed","glb_url":"https://m.example/x.glb"}`, StateReady},
	}
	for _, tt := range tests {
		state, _ := Evaluate([]byte(tt.body))
		if state != tt.wantState {
			t.Errorf("Evaluate(%s) = %s, want %s", tt.body, state, tt.wantState)
		}
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateReady, StateFailed, StateTimedOut} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StateCreated, StatePolling} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
