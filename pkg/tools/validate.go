package tools

import (
	"fmt"
	"strings"

	"github.com/strata-db/strata/pkg/errors"
)

// Statement allow-lists, by leading keyword. Classification is string-based
// on purpose: the server does not parse SQL, it gates which statement kinds
// each tool will forward to the engine.
var (
	readKeywords  = map[string]bool{"SELECT": true, "WITH": true, "EXPLAIN": true}
	writeKeywords = map[string]bool{"INSERT": true, "UPDATE": true, "DELETE": true, "REPLACE": true}
	ddlKeywords   = map[string]bool{"CREATE": true, "ALTER": true, "DROP": true, "TRUNCATE": true}
)

// validateRead rejects anything that is not a single row-returning query.
func validateRead(statement string) error {
	return validateKind(statement, readKeywords, "read queries")
}

// validateWrite rejects anything that is not a single DML statement.
func validateWrite(statement string) error {
	return validateKind(statement, writeKeywords, "write queries")
}

// validateDDL rejects anything that is not a single DDL statement.
func validateDDL(statement string) error {
	return validateKind(statement, ddlKeywords, "DDL statements")
}

func validateKind(statement string, allowed map[string]bool, kind string) error {
	keyword := firstKeyword(statement)
	if keyword == "" {
		return errors.NewQueryError(errors.ErrQueryRejected, "statement is empty")
	}
	if err := singleStatement(statement); err != nil {
		return err
	}
	if !allowed[keyword] {
		return errors.NewQueryError(errors.ErrQueryRejected,
			fmt.Sprintf("%s statements are not accepted by this tool, which only runs %s", keyword, kind))
	}
	return nil
}

// singleStatement rejects stacked statements: one trailing semicolon is
// tolerated, anything after it is not.
func singleStatement(statement string) error {
	body := stripComments(statement)
	if i := strings.IndexByte(body, ';'); i >= 0 {
		if strings.TrimSpace(body[i+1:]) != "" {
			return errors.NewQueryError(errors.ErrQueryRejected,
				"multiple statements are not accepted; submit one statement per call")
		}
	}
	return nil
}

// firstKeyword returns the first SQL keyword, upper-cased, skipping leading
// comments.
func firstKeyword(statement string) string {
	s := strings.TrimSpace(stripComments(statement))
	end := len(s)
	for i, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			end = i
			break
		}
	}
	return strings.ToUpper(s[:end])
}

// stripComments removes -- line comments and /* */ block comments. String
// literals containing comment markers are rare in tool traffic and err on
// the side of rejection, never acceptance.
func stripComments(statement string) string {
	var sb strings.Builder
	s := statement
	for {
		line := strings.Index(s, "--")
		block := strings.Index(s, "/*")
		switch {
		case line == -1 && block == -1:
			sb.WriteString(s)
			return sb.String()
		case block == -1 || (line != -1 && line < block):
			sb.WriteString(s[:line])
			if nl := strings.IndexByte(s[line:], '\n'); nl >= 0 {
				s = s[line+nl:]
			} else {
				return sb.String()
			}
		default:
			sb.WriteString(s[:block])
			if end := strings.Index(s[block:], "*/"); end >= 0 {
				s = s[block+end+2:]
			} else {
				return sb.String()
			}
		}
	}
}
