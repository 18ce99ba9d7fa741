package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ezrec/i8080/translate"
)

var f = translate.From

var (
	ErrAddressSyntax = errors.New(f("address must be 0x0000 to 0xffff"))
	ErrDefineSyntax  = errors.New(f("define must be NAME=VALUE"))
)

// addrValue is a 16-bit address flag, in any Go integer syntax.
type addrValue uint16

var _ pflag.Value = (*addrValue)(nil)

func (av *addrValue) String() string {
	return fmt.Sprintf("%#04x", uint16(*av))
}

func (av *addrValue) Set(text string) (err error) {
	value, err := strconv.ParseUint(text, 0, 16)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrAddressSyntax, text)
		return
	}
	*av = addrValue(value)
	return
}

func (av *addrValue) Type() string {
	return "address"
}

// defineValue collects repeated NAME=VALUE assembler predefines.
type defineValue map[string]string

var _ pflag.Value = (defineValue)(nil)

func (dv defineValue) String() string {
	var defs []string
	for key, value := range dv {
		defs = append(defs, key+"="+value)
	}
	sort.Strings(defs)
	return "[" + strings.Join(defs, ",") + "]"
}

func (dv defineValue) Set(text string) (err error) {
	key, value, ok := strings.Cut(text, "=")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !ok || len(key) == 0 || len(value) == 0 {
		err = fmt.Errorf("%w: %v", ErrDefineSyntax, text)
		return
	}
	dv[key] = value
	return
}

func (dv defineValue) Type() string {
	return "define"
}
