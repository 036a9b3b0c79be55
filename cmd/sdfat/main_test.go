package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// helper: execute a cobra command and capture output.
func execCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// putSlot fills one 32-byte directory slot.
func putSlot(b []byte, name string, attr byte, cluster uint32, size uint32) {
	copy(b[:11], name)
	b[11] = attr
	binary.LittleEndian.PutUint16(b[20:], uint16(cluster>>16))
	binary.LittleEndian.PutUint16(b[22:], 0x2B3C) // write time 05:25:56
	binary.LittleEndian.PutUint16(b[24:], 0x58E5) // write date 2024-07-05
	binary.LittleEndian.PutUint16(b[26:], uint16(cluster&0xFFFF))
	binary.LittleEndian.PutUint32(b[28:], size)
}

// writeTestImage writes a minimal partitioned FAT32 image to a temp file:
// a root directory holding DOCS and README.TXT, with NOTES.TXT inside DOCS.
func writeTestImage(t *testing.T) string {
	t.Helper()

	const (
		lbaBegin     = 64
		fatBegin     = 68 // lbaBegin + 4 reserved sectors
		clusterBegin = 72 // fatBegin + 2 FATs x 2 sectors
	)
	img := make([]byte, 80*512)

	// MBR with one FAT32 LBA partition
	p := img[446:]
	p[4] = 0x0C
	binary.LittleEndian.PutUint32(p[8:], lbaBegin)
	binary.LittleEndian.PutUint32(p[12:], 16)
	img[510], img[511] = 0x55, 0xAA

	// Volume ID
	v := img[lbaBegin*512:]
	binary.LittleEndian.PutUint16(v[11:], 512)
	v[13] = 1 // sectors per cluster
	binary.LittleEndian.PutUint16(v[14:], 4)
	v[16] = 2
	binary.LittleEndian.PutUint32(v[36:], 2)
	binary.LittleEndian.PutUint32(v[44:], 2)
	v[510], v[511] = 0x55, 0xAA

	// FAT #1: clusters 2 (root), 3 (DOCS), 4 and 5 (file content)
	fat := img[fatBegin*512:]
	const endOfChain = 0x0FFFFFFF
	for _, cluster := range []uint32{2, 3, 4, 5} {
		binary.LittleEndian.PutUint32(fat[cluster*4:], endOfChain)
	}

	// Root directory, cluster 2
	root := img[clusterBegin*512:]
	putSlot(root, "DISK       ", 0x08, 0, 0)
	putSlot(root[32:], "DOCS       ", 0x10, 3, 0)
	putSlot(root[64:], "README  TXT", 0x20, 4, 12)

	// DOCS directory, cluster 3
	docs := img[(clusterBegin+1)*512:]
	putSlot(docs, ".          ", 0x10, 3, 0)
	putSlot(docs[32:], "..         ", 0x10, 0, 0)
	putSlot(docs[64:], "NOTES   TXT", 0x20, 5, 5)

	copy(img[(clusterBegin+2)*512:], "hello images")
	copy(img[(clusterBegin+3)*512:], "notes")

	path := filepath.Join(t.TempDir(), "test.img")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func TestCreateRootCommand(t *testing.T) {
	cmd := createRootCommand()

	want := map[string]bool{
		"info":  false,
		"ls":    false,
		"cat":   false,
		"rm":    false,
		"mkimg": false,
	}
	for _, sub := range cmd.Commands() {
		want[sub.Name()] = true
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q is not registered", name)
		}
	}

	if cmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("--verbose flag should be registered")
	}
}

func TestInfoCommand(t *testing.T) {
	img := writeTestImage(t)

	out, err := execCmd(t, createRootCommand(), "info", img)
	if err != nil {
		t.Fatalf("info error = %v", err)
	}
	for _, line := range []string{
		"Partition start LBA: 64",
		"Root cluster:        2",
		"Files:               2",
		"Directories:         1",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("info output missing %q:\n%s", line, out)
		}
	}
}

func TestListCommand(t *testing.T) {
	img := writeTestImage(t)

	t.Run("whole image", func(t *testing.T) {
		out, err := execCmd(t, createRootCommand(), "ls", img)
		if err != nil {
			t.Fatalf("ls error = %v", err)
		}
		for _, path := range []string{"DOCS", "DOCS/NOTES.TXT", "README.TXT"} {
			if !strings.Contains(out, path) {
				t.Errorf("ls output missing %q:\n%s", path, out)
			}
		}
	})

	t.Run("subdirectory with long listing", func(t *testing.T) {
		defer func() { longListing = false }()

		out, err := execCmd(t, createRootCommand(), "ls", "--long", img, "DOCS")
		if err != nil {
			t.Fatalf("ls error = %v", err)
		}
		if !strings.Contains(out, "DOCS/NOTES.TXT") || !strings.Contains(out, "2024-07-05") {
			t.Errorf("ls -l output missing entry or stamp:\n%s", out)
		}
		if strings.Contains(out, "README.TXT") {
			t.Errorf("ls DOCS listed a root file:\n%s", out)
		}
	})
}

func TestCatCommand(t *testing.T) {
	img := writeTestImage(t)

	out, err := execCmd(t, createRootCommand(), "cat", img, "README.TXT")
	if err != nil {
		t.Fatalf("cat error = %v", err)
	}
	if out != "hello images" {
		t.Errorf("cat output = %q, want %q", out, "hello images")
	}

	if _, err := execCmd(t, createRootCommand(), "cat", img, "NOPE.TXT"); err == nil {
		t.Error("cat of a missing file succeeded")
	}
}

func TestRemoveCommand(t *testing.T) {
	img := writeTestImage(t)

	if _, err := execCmd(t, createRootCommand(), "rm", img, "DOCS/NOTES.TXT"); err != nil {
		t.Fatalf("rm error = %v", err)
	}

	// The slot is tombstoned on disk, a second delete finds nothing.
	if _, err := execCmd(t, createRootCommand(), "rm", img, "DOCS/NOTES.TXT"); err == nil {
		t.Error("second rm of the same file succeeded")
	}

	out, err := execCmd(t, createRootCommand(), "ls", img)
	if err != nil {
		t.Fatalf("ls error = %v", err)
	}
	if strings.Contains(out, "NOTES.TXT") {
		t.Errorf("deleted file still listed:\n%s", out)
	}
}

func TestMakeImageCommand(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "fresh.img")
	hostFile := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(hostFile, []byte("from the host"), 0o644); err != nil {
		t.Fatalf("write host file: %v", err)
	}

	if _, err := execCmd(t, createRootCommand(), "mkimg", img, hostFile); err != nil {
		t.Fatalf("mkimg error = %v", err)
	}

	volume, f, err := mountImage(img)
	if err != nil {
		t.Fatalf("mount of the fresh image failed: %v", err)
	}
	defer f.Close()

	content, found, err := volume.ReadFilePath("HELLO.TXT")
	if err != nil || !found {
		t.Fatalf("ReadFilePath() = (found %v, %v)", found, err)
	}
	if string(content) != "from the host" {
		t.Errorf("content = %q, want %q", content, "from the host")
	}
}
