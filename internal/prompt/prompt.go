// Package prompt reads answers from an interactive terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"SpendQueue/internal/model"
)

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Line prints question and returns the trimmed answer.
func (p *Prompter) Line(question string) (string, error) {
	fmt.Fprintln(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// YesNo asks until the answer is y/yes or n/no.
func (p *Prompter) YesNo(question string) (bool, error) {
	for {
		answer, err := p.Line(question + " (y/n)")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please enter either yes/y or no/n")
	}
}

// Amount asks until the answer parses as a non-negative decimal. A leading
// "$" is accepted.
func (p *Prompter) Amount(question string) (model.Money, error) {
	for {
		answer, err := p.Line(question)
		if err != nil {
			return model.Money{}, err
		}
		amount, err := model.ParseMoney(strings.TrimPrefix(answer, "$"))
		if err == nil && !amount.IsNegative() {
			return amount, nil
		}
		fmt.Fprintf(p.out, "Can't parse amount %q, try again\n", answer)
	}
}
