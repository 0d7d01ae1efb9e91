package rattle

import "fmt"

// splitTagArgs splits a tag's raw argument string into whitespace-separated
// arguments. Double- and single-quoted substrings suppress splitting, as
// does any run inside unbalanced parentheses. A backslash escapes the
// following byte: the escape is dropped and the byte copied through. Quotes
// are stripped only when they wrap an entire argument.
//
// Tag arguments are shell-like argument lists, not expressions; arguments
// that need expression semantics are re-parsed individually by the caller.
func splitTagArgs(s string) ([]string, error) {
	var args []string
	var current []byte
	escaped, quote, squote := false, false, false
	parens := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			current = append(current, c)
			continue
		}
		switch c {
		case '"':
			if !squote {
				quote = !quote
			}
		case '\'':
			if !quote {
				squote = !squote
			}
		case '(':
			if !quote && !squote {
				parens++
			}
		case ')':
			if !quote && !squote {
				if parens <= 0 {
					return nil, fmt.Errorf("closing un-open parenthesis in %q", s)
				}
				parens--
			}
		case '\\':
			escaped = true
			continue
		case ' ', '\t', '\n', '\r':
			if !quote && !squote && parens == 0 {
				if len(current) > 0 {
					args = append(args, stripWrappingQuotes(current))
					current = nil
				}
				continue
			}
		}
		current = append(current, c)
	}
	if escaped {
		return nil, fmt.Errorf("un-used escaping in %q", s)
	}
	if quote {
		return nil, fmt.Errorf("un-closed double quote in %q", s)
	}
	if squote {
		return nil, fmt.Errorf("un-closed single quote in %q", s)
	}
	if parens > 0 {
		return nil, fmt.Errorf("un-closed parenthesis (%d still open) in %q", parens, s)
	}
	if len(current) > 0 {
		args = append(args, stripWrappingQuotes(current))
	}
	return args, nil
}

func stripWrappingQuotes(arg []byte) string {
	if len(arg) >= 2 && arg[0] == arg[len(arg)-1] && (arg[0] == '"' || arg[0] == '\'') {
		arg = arg[1 : len(arg)-1]
	}
	return string(arg)
}
