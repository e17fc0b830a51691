package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtensionMechanism(t *testing.T) {
	tempDir := t.TempDir()

	helloCmdSource := fmt.Sprintf(`
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Printf("%s=%%s\n", os.Getenv("%s"))
	fmt.Printf("%s=%%s\n", os.Getenv("%s"))
	fmt.Printf("args=%%v\n", os.Args[1:])
}
`, EnvConfigFile, EnvConfigFile, EnvBaseDir, EnvBaseDir)

	helloCmdPath := filepath.Join(tempDir, "hcs-hello")
	srcFile := helloCmdPath + ".go"
	if err := os.WriteFile(srcFile, []byte(helloCmdSource), 0644); err != nil {
		t.Fatalf("Failed to write hcs-hello source: %v", err)
	}
	cmd := exec.Command("go", "build", "-o", helloCmdPath, srcFile)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to compile hcs-hello: %v", err)
	}

	hcsBinaryPath := filepath.Join(tempDir, "hcs")
	cmd = exec.Command("go", "build", "-o", hcsBinaryPath, "../hcs")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to compile hcs binary: %v", err)
	}

	expectedConfig := filepath.Join(tempDir, "portfolio.yaml")
	expectedBase := filepath.Join(tempDir, "data")
	args := []string{
		"-config", expectedConfig,
		"-base-dir", expectedBase,
		"hello", "world",
	}

	hcsCmd := exec.Command(hcsBinaryPath, args...)
	hcsCmd.Env = []string{"PATH=" + tempDir + string(os.PathListSeparator) + os.Getenv("PATH")}
	var stdout, stderr bytes.Buffer
	hcsCmd.Stdout = &stdout
	hcsCmd.Stderr = &stderr
	if err := hcsCmd.Run(); err != nil {
		t.Fatalf("hcs command failed: %v\nStdout: %s\nStderr: %s", err, stdout.String(), stderr.String())
	}

	output := stdout.String()
	for _, expectedLine := range []string{
		EnvConfigFile + "=" + expectedConfig,
		EnvBaseDir + "=" + expectedBase,
		"args=[world]",
	} {
		if !strings.Contains(output, expectedLine) {
			t.Errorf("Expected output to contain %q, but got:\n%s", expectedLine, output)
		}
	}
}
