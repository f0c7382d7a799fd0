package site

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/sjson"
)

// ManifestName is the site manifest filename written into the output root.
const ManifestName = "nbexport.json"

// Manifest describes the generated site to whatever serves or embeds it.
type Manifest struct {
	BaseURL    string
	Theme      string
	Title      string
	PageConfig map[string]any
}

// WriteManifest patches the manifest document field by field and writes it
// into the output root. Patching (rather than marshaling a struct) keeps
// unknown fields intact if a deployment pipeline pre-seeds the file.
func WriteManifest(outputDir string, m Manifest) error {
	dest := filepath.Join(outputDir, ManifestName)

	doc := "{}"
	if existing, err := os.ReadFile(dest); err == nil {
		doc = string(existing)
	}

	var err error
	for _, patch := range []struct {
		path  string
		value any
	}{
		{"generator", "nbexport"},
		{"appUrl", "./tree"},
		{"baseUrl", m.BaseURL},
		{"theme", m.Theme},
		{"title", m.Title},
	} {
		if doc, err = sjson.Set(doc, patch.path, patch.value); err != nil {
			return fmt.Errorf("patch manifest %s: %w", patch.path, err)
		}
	}
	if len(m.PageConfig) > 0 {
		if doc, err = sjson.Set(doc, "pageConfig", m.PageConfig); err != nil {
			return fmt.Errorf("patch manifest pageConfig: %w", err)
		}
	}

	if err := os.WriteFile(dest, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
