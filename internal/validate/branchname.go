package validate

import "strings"

const invalidBranchNameChars = "~^:?*[\\"

// ValidateBranchName checks name against the §4.12 BranchName rules: non
// -empty, not leading '-', not trailing '.' or '.lock', no '..', no '@{',
// no control characters, none of the git-reserved characters, no
// whitespace.
func ValidateBranchName(name string) Result {
	if name == "" {
		return fail(CodeInvalidIntent, "branch name must not be empty")
	}
	if strings.HasPrefix(name, "-") {
		return fail(CodeInvalidIntent, "branch name must not start with '-'")
	}
	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, ".lock") {
		return fail(CodeInvalidIntent, "branch name must not end with '.' or '.lock'")
	}
	if strings.Contains(name, "..") {
		return fail(CodeInvalidIntent, "branch name must not contain '..'")
	}
	if strings.Contains(name, "@{") {
		return fail(CodeInvalidIntent, "branch name must not contain '@{'")
	}
	for _, r := range name {
		if r <= 0x1f || r == 0x7f {
			return fail(CodeInvalidIntent, "branch name must not contain control characters")
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return fail(CodeInvalidIntent, "branch name must not contain whitespace")
		}
		if strings.ContainsRune(invalidBranchNameChars, r) {
			return fail(CodeInvalidIntent, "branch name must not contain '"+string(r)+"'")
		}
	}
	return ok()
}
