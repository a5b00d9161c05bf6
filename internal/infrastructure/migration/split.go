package migration

import "strings"

// SplitStatements separa un script SQL en sentencias terminadas en ';'.
// Respeta comillas simples/dobles/backticks (dentro de comillas simples y dobles
// la barra invertida escapa el carácter siguiente, como en MySQL),
// comentarios -- y /* */, y bloques $tag$ ... $tag$ de PostgreSQL. Las sentencias vacías o
// hechas solo de comentarios se descartan.
func SplitStatements(script string) []string {
	var (
		out     []string
		cur     strings.Builder
		inQuote byte
		dollar  string
	)
	flush := func() {
		s := strings.TrimSpace(cur.String())
		if s != "" && !onlyComments(s) {
			out = append(out, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case dollar != "":
			if strings.HasPrefix(script[i:], dollar) {
				cur.WriteString(dollar)
				i += len(dollar) - 1
				dollar = ""
				continue
			}
		case inQuote != 0:
			if c == '\\' && inQuote != '`' && i+1 < len(script) {
				cur.WriteByte(c)
				cur.WriteByte(script[i+1])
				i++
				continue
			}
			if c == inQuote {
				// '' escapa una comilla dentro del literal
				if i+1 < len(script) && script[i+1] == inQuote {
					cur.WriteByte(c)
					i++
				} else {
					inQuote = 0
				}
			}
		case c == '\'' || c == '"' || c == '`':
			inQuote = c
		case c == '-' && i+1 < len(script) && script[i+1] == '-':
			end := strings.IndexByte(script[i:], '\n')
			if end < 0 {
				end = len(script) - i
			}
			cur.WriteString(script[i : i+end])
			i += end - 1
			continue
		case c == '/' && i+1 < len(script) && script[i+1] == '*':
			end := strings.Index(script[i+2:], "*/")
			if end < 0 {
				cur.WriteString(script[i:])
				i = len(script)
				continue
			}
			cur.WriteString(script[i : i+end+4])
			i += end + 3
			continue
		case c == '$':
			if tag, ok := dollarTag(script[i:]); ok {
				dollar = tag
				cur.WriteString(tag)
				i += len(tag) - 1
				continue
			}
		case c == ';':
			flush()
			continue
		}
		cur.WriteByte(c)
	}
	flush()
	return out
}

// dollarTag reconoce $$ o $nombre$ al inicio de s.
func dollarTag(s string) (string, bool) {
	for j := 1; j < len(s); j++ {
		c := s[j]
		if c == '$' {
			return s[:j+1], true
		}
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || (j > 1 && c >= '0' && c <= '9')) {
			return "", false
		}
	}
	return "", false
}

func onlyComments(s string) bool {
	for {
		s = strings.TrimSpace(s)
		switch {
		case s == "":
			return true
		case strings.HasPrefix(s, "--"):
			end := strings.IndexByte(s, '\n')
			if end < 0 {
				return true
			}
			s = s[end+1:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s[2:], "*/")
			if end < 0 {
				return true
			}
			s = s[end+4:]
		default:
			return false
		}
	}
}
