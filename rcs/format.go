package rcs

// DefaultFormat is the grep output format used when none is specified.
const DefaultFormat = "rlL"

// FormatMatch expands one Match into a tuple of values, one per directive
// character in format:
//
//	r  revision number
//	l  line number in that revision
//	L  the matching line text
//	a  author of that revision
//	d  raw RCS date
//	D  ISO-8601 date
//	t  tag names pointing at that revision ([]string)
//	f  filename as supplied to the model
//	m  commit message
//
// 'l' is an int and 't' is a []string (callers that need a single string
// should join it themselves); every other element is a string.
func (f *File) FormatMatch(m Match, format string) ([]interface{}, error) {
	out := make([]interface{}, 0, len(format))
	for i := 0; i < len(format); i++ {
		switch format[i] {
		case 'r':
			out = append(out, string(m.Revision))
		case 'l':
			out = append(out, m.Lineno)
		case 'L':
			out = append(out, m.Line)
		case 'a':
			a, err := f.Author(m.Revision)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		case 'd':
			d, err := f.Date(m.Revision)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		case 'D':
			d, err := f.Date(m.Revision)
			if err != nil {
				return nil, err
			}
			iso, err := ISODate(d)
			if err != nil {
				return nil, err
			}
			out = append(out, iso)
		case 't':
			out = append(out, f.Tags(m.Revision))
		case 'f':
			out = append(out, f.Filename())
		case 'm':
			msg, err := f.Message(m.Revision)
			if err != nil {
				return nil, err
			}
			out = append(out, msg)
		default:
			return nil, &BadFormat{Directive: format[i]}
		}
	}
	return out, nil
}

// ValidateFormat reports a *BadFormat error if format contains any
// directive outside the supported set, without needing a Match to apply it
// to. Useful for validating a user-supplied format string up front.
func ValidateFormat(format string) error {
	for i := 0; i < len(format); i++ {
		switch format[i] {
		case 'r', 'l', 'L', 'a', 'd', 'D', 't', 'f', 'm':
		default:
			return &BadFormat{Directive: format[i]}
		}
	}
	return nil
}
