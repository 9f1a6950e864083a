package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// File is a passlane file to check
type File struct {
	Name      string // relative to the home directory
	Plaintext bool
}

// FileStatus is the git state of one file
type FileStatus struct {
	File
	Exists  bool
	Tracked bool
	Ignored bool
}

// Status contains git integration status information
type Status struct {
	IsRepo bool
	Files  []FileStatus
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// Check inspects files inside home. exists reports which of them are present
// on disk; missing files are only checked against .gitignore.
func Check(home string, files []File, exists func(name string) bool) *Status {
	status := &Status{}
	if !IsGitRepo(home) {
		return status
	}
	status.IsRepo = true

	for _, f := range files {
		fs := FileStatus{File: f, Exists: exists(f.Name)}
		if fs.Exists {
			fs.Tracked = IsTracked(home, f.Name)
		}
		fs.Ignored = IsIgnored(home, f.Name)
		status.Files = append(status.Files, fs)
	}
	return status
}

// Problems reports whether Format would print an error or a warning
func (s *Status) Problems() bool {
	for _, f := range s.Files {
		if f.Plaintext && (f.Tracked || (f.Exists && !f.Ignored)) {
			return true
		}
	}
	return false
}

// Format formats git status for display
func Format(status *Status) string {
	if !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit Integration:\n")

	for _, f := range status.Files {
		switch {
		case f.Plaintext && f.Tracked:
			result.WriteString(fmt.Sprintf("   error: %s is tracked by git (run: git rm --cached %s)\n", f.Name, f.Name))
		case f.Plaintext && f.Exists && !f.Ignored:
			result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore (add to .gitignore)\n", f.Name))
		case f.Plaintext:
			if f.Exists {
				result.WriteString(fmt.Sprintf("   ok: %s is ignored\n", f.Name))
			}
		case f.Tracked && !f.Ignored && strings.HasSuffix(f.Name, ".lock"):
			result.WriteString(fmt.Sprintf("   warning: %s is tracked but changes on every write\n", f.Name))
		case f.Tracked:
			result.WriteString(fmt.Sprintf("   ok: %s is tracked (encrypted)\n", f.Name))
		}
	}

	return result.String()
}
