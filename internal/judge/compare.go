package judge

import (
	"bufio"
	"os"
	"strings"
)

// compareStandard reads both files line by line, drops blank lines from
// both sides, and requires the remaining lines to match exactly in order
// and in count. Line-ending differences never matter since scanning splits
// on them; a trailing blank line never matters since it is filtered out.
func compareStandard(outPath, ansPath string) (bool, error) {
	outLines, err := nonBlankLines(outPath)
	if err != nil {
		return false, err
	}
	ansLines, err := nonBlankLines(ansPath)
	if err != nil {
		return false, err
	}
	if len(outLines) != len(ansLines) {
		return false, nil
	}
	for i := range outLines {
		if outLines[i] != ansLines[i] {
			return false, nil
		}
	}
	return true, nil
}

func nonBlankLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// compareStrict requires byte-for-byte equality of the whole file, so a
// difference that compareStandard ignores (a trailing newline, for
// instance) is rejected here.
func compareStrict(outPath, ansPath string) (bool, error) {
	outData, err := os.ReadFile(outPath)
	if err != nil {
		return false, err
	}
	ansData, err := os.ReadFile(ansPath)
	if err != nil {
		return false, err
	}
	return string(outData) == string(ansData), nil
}
