package judge

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// runSPJ invokes a problem's special judge against one case's produced
// output, grounded on the source's compare_spj: argv[0] is the judge
// program, the remaining elements are its arguments with %OUTPUT% and
// %ANSWER% substituted for the produced output path and the answer file
// path. The judge's stdout is captured to a per-call scratch directory
// (named with a uuid rather than the source's fixed "SPJDIR", so concurrent
// judges never collide); its first non-empty line is "Accepted" or
// anything else, its second non-empty line becomes CaseResult.info. A
// crash, non-zero exit or missing second line is reported as spjErr.
func runSPJ(argv []string, outputPath, answerPath string) (accepted bool, info string, spjErr bool) {
	if len(argv) == 0 {
		return false, "", true
	}

	scratch := filepath.Join(os.TempDir(), "csoj-spj-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return false, "", true
	}
	defer os.RemoveAll(scratch)

	outFile, err := os.Create(filepath.Join(scratch, "spj.out"))
	if err != nil {
		return false, "", true
	}
	defer outFile.Close()

	args := make([]string, 0, len(argv)-1)
	for _, a := range argv[1:] {
		switch a {
		case "%OUTPUT%":
			args = append(args, outputPath)
		case "%ANSWER%":
			args = append(args, answerPath)
		default:
			args = append(args, a)
		}
	}

	cmd := exec.Command(argv[0], args...)
	cmd.Stdout = outFile
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return false, "", true
	}
	outFile.Close()

	lines, err := spjOutputLines(filepath.Join(scratch, "spj.out"))
	if err != nil || len(lines) < 2 {
		return false, "", true
	}

	return lines[0] == "Accepted", lines[1], false
}

func spjOutputLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
