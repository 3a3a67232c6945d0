package avatar

import (
	"strings"

	"github.com/tidwall/gjson"
)

var (
	jobIDKeys     = []string{"id", "avatar_id", "data", "result"}
	nestedIDKeys  = []string{"id", "avatar_id"}
	directURLKeys = []string{"glb_url", "avatar_url", "url", "gltf", "gltf_url"}

	assetKeys       = []string{"glb_url", "gltf_url", "avatar_url", "url", "result", "download_url"}
	nestedAssetKeys = []string{"glb", "gltf", "url", "download_url"}
	dataAssetKeys   = []string{"glb", "glb_url", "gltf", "gltf_url", "avatar_url", "url"}
)

// ExtractJob reads a create response. It returns the job id, or the asset
// URL when the response already carries a finished model.
func ExtractJob(body []byte) (id, assetURL string) {
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return "", ""
	}

	for _, key := range jobIDKeys {
		v := root.Get(key)
		if v.Type == gjson.String && v.String() != "" {
			return v.String(), ""
		}
		if v.IsObject() {
			for _, nested := range nestedIDKeys {
				if n := v.Get(nested); n.Type == gjson.String {
					return n.String(), ""
				}
			}
		}
	}

	for _, key := range directURLKeys {
		if v := root.Get(key); v.Type == gjson.String {
			return "", v.String()
		}
	}
	return "", ""
}

// FindAssetURL looks for the model URL in a status response. Known fields
// are checked first, then any string that looks like a model asset.
func FindAssetURL(body []byte) string {
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return ""
	}

	for _, key := range assetKeys {
		v := root.Get(key)
		if isGLB(v) {
			return v.String()
		}
		if v.IsObject() {
			for _, sub := range nestedAssetKeys {
				if s := v.Get(sub); isGLB(s) {
					return s.String()
				}
			}
		}
	}

	if data := root.Get("data"); data.IsObject() {
		urls := data.Get("urls")
		if !urls.Exists() || !truthy(urls) {
			urls = data.Get("result")
		}
		if urls.IsObject() {
			for _, key := range dataAssetKeys {
				if u := urls.Get(key); isGLB(u) {
					return u.String()
				}
			}
		}
	}

	return findAsset(root)
}

// ExtractStatus returns status, processingStatus or data.status, whichever
// is set first
func ExtractStatus(body []byte) string {
	root := gjson.ParseBytes(body)
	for _, path := range []string{"status", "processingStatus", "data.status"} {
		if v := root.Get(path); truthy(v) {
			return v.String()
		}
	}
	return ""
}

// IsFailedStatus reports whether status is failed or error
func IsFailedStatus(status string) bool {
	s := strings.ToLower(status)
	return s == "failed" || s == "error"
}

// Evaluate classifies one status response
func Evaluate(body []byte) (State, string) {
	if u := FindAssetURL(body); u != "" {
		return StateReady, u
	}
	if IsFailedStatus(ExtractStatus(body)) {
		return StateFailed, ""
	}
	return StatePolling, ""
}

func isGLB(v gjson.Result) bool {
	return v.Type == gjson.String && strings.HasSuffix(v.String(), ".glb")
}

func looksLikeAsset(s string) bool {
	return strings.HasSuffix(s, ".glb") || strings.HasSuffix(s, ".gltf") ||
		strings.Contains(s, "/avatar/") || strings.Contains(s, "/avatars/") || strings.Contains(s, "/models/")
}

// findAsset walks v depth first, in document order
func findAsset(v gjson.Result) string {
	switch {
	case v.IsObject() || v.IsArray():
		found := ""
		v.ForEach(func(_, item gjson.Result) bool {
			found = findAsset(item)
			return found == ""
		})
		return found
	case v.Type == gjson.String && looksLikeAsset(v.String()):
		return v.String()
	}
	return ""
}

// truthy mirrors a loose "is set" check: empty strings, zero, false, null
// and empty containers are not set
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.String() != ""
	case gjson.JSON:
		if v.IsArray() {
			return len(v.Array()) > 0
		}
		return len(v.Map()) > 0
	}
	return v.Exists()
}
