package services

import (
	"context"
	"testing"

	"workdrive/models"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`..\..\boot.ini`, "boot.ini"},
		{"a:b*c?.txt", "a_b_c_.txt"},
		{"   ", "unnamed"},
		{"...", "_."},
		{"", "unnamed"},
	}

	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsExtensionAllowed(t *testing.T) {
	testUploadConfig()

	allowed := []string{"a.pdf", "b.TXT", "c.xlsm", "d.csv"}
	for _, name := range allowed {
		if !isExtensionAllowed(name) {
			t.Errorf("expected %q to be allowed", name)
		}
	}

	rejected := []string{"a.exe", "b.sh", "c", "d.txt.exe"}
	for _, name := range rejected {
		if isExtensionAllowed(name) {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestAllowedExtensionsLabel(t *testing.T) {
	testUploadConfig()

	got := allowedExtensionsLabel()
	want := "PDF, TXT, DOC, DOCX, XLS, XLSX, XLSM, CSV"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestUniqueFileNameSkipsTakenSuffixes(t *testing.T) {
	files := newFakeFileRepo()
	files.add(models.File{ID: 1, Name: "doc.txt", UploaderID: 1})
	files.add(models.File{ID: 2, Name: "doc (1).txt", UploaderID: 1})

	got, err := uniqueFileName(context.Background(), nil, files, 1, nil, "doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "doc (2).txt" {
		t.Fatalf("expected doc (2).txt, got %q", got)
	}
}

func TestUniqueFileNameIgnoresDeletedRows(t *testing.T) {
	files := newFakeFileRepo()
	files.add(models.File{ID: 1, Name: "doc.txt", UploaderID: 1, IsDeleted: true})

	got, err := uniqueFileName(context.Background(), nil, files, 1, nil, "doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "doc.txt" {
		t.Fatalf("expected original name, got %q", got)
	}
}

func TestStoragePathFor(t *testing.T) {
	folderID := uint(7)
	cases := []struct {
		folderID *uint
		name     string
		want     string
	}{
		{nil, "a.txt", "workspace/user_3/root/a.txt"},
		{&folderID, "a.txt", "workspace/user_3/folder_7/a.txt"},
		{nil, "../b.txt", "workspace/user_3/root/b.txt"},
	}

	for _, tc := range cases {
		if got := storagePathFor(3, tc.folderID, tc.name); got != tc.want {
			t.Errorf("storagePathFor(3, %v, %q) = %q, want %q", tc.folderID, tc.name, got, tc.want)
		}
	}
}
