package models

import "testing"

func TestNewEntryFile(t *testing.T) {
	e := NewEntry("/projects/rigs/Char_Body.MA", false, 1024, 1700000000)
	if e.Name != "Char_Body.MA" {
		t.Errorf("Name = %q", e.Name)
	}
	if e.Ext != ".ma" {
		t.Errorf("Ext = %q, want lower-cased .ma", e.Ext)
	}
	if e.Parent != "/projects/rigs" {
		t.Errorf("Parent = %q", e.Parent)
	}
	if e.IsDir || e.Size != 1024 || e.Modified != 1700000000 {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestNewEntryDir(t *testing.T) {
	e := NewEntry("/projects/rigs", true, 0, 0)
	if e.Ext != "" {
		t.Errorf("Ext = %q, directories have no extension", e.Ext)
	}
	if e.Name != "rigs" || e.Parent != "/projects" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if !e.IsDir {
		t.Error("IsDir should be set")
	}
}

func TestNewEntryNoExtension(t *testing.T) {
	e := NewEntry("/projects/Makefile", false, 0, 0)
	if e.Ext != "" {
		t.Errorf("Ext = %q, want empty", e.Ext)
	}
}
