package job

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

type lineReader struct {
	r *bufio.Reader
}

// next returns the following line without its newline. Lines have no length limit.
func (l *lineReader) next() (string, error) {
	line, err := l.r.ReadString('\n')
	switch {
	case err == nil:
		return strings.TrimSuffix(line, "\n"), nil
	case err == io.EOF && line != "":
		return line, nil
	case err == io.EOF:
		return "", ErrUnexpectedEOF
	}
	return "", errors.Wrap(err, "Reading input failed")
}

// Parse reads a job list from r: a count line followed by that many URL and name line
// pairs. Items with a blank URL or name are skipped and reported in itemErrs. A bad
// count or a short stream is fatal and returned as err.
func Parse(r io.Reader) (jobs []Job, itemErrs []error, err error) {
	lines := &lineReader{r: bufio.NewReader(r)}

	first, err := lines.next()
	if err != nil {
		return nil, nil, err
	}

	count, err := parseCount(first)
	if err != nil {
		return nil, nil, err
	}

	jobs = make([]Job, 0, count)
	for i := 1; i <= count; i++ {
		rawURL, err := lines.next()
		if err != nil {
			return nil, itemErrs, err
		}
		rawName, err := lines.next()
		if err != nil {
			return nil, itemErrs, err
		}

		// Leading whitespace is part of the name, only the line ending side is cleaned.
		url := strings.TrimSpace(rawURL)
		name := strings.TrimRightFunc(rawName, unicode.IsSpace)

		switch {
		case url == "":
			itemErrs = append(itemErrs, &EmptyFieldError{Index: i, Field: FieldURL})
		case name == "":
			itemErrs = append(itemErrs, &EmptyFieldError{Index: i, Field: FieldName})
		default:
			jobs = append(jobs, Job{URL: url, Name: name})
		}
	}

	return jobs, itemErrs, nil
}

func parseCount(line string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidCount, "%q is not a number", strings.TrimSpace(line))
	}
	if count <= 0 {
		return 0, errors.Wrapf(ErrInvalidCount, "got %d", count)
	}
	return count, nil
}
