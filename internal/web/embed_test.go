package web

import "testing"

func TestPanelTemplate(t *testing.T) {
	tmpl, err := PanelTemplate()
	if err != nil {
		t.Fatalf("PanelTemplate() error = %v", err)
	}
	if tmpl.Lookup("panel.html") == nil {
		t.Error("panel.html not defined")
	}
}
