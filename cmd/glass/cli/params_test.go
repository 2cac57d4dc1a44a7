// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type promptParams struct {
	JSONOutput
	Mode       string        `flag:"mode,m" desc:"initial mode" default:"menu"`
	CanInject  bool          `flag:"can-inject" desc:"inject the result"`
	Height     int           `flag:"height" desc:"rows" default:"5"`
	Timeout    time.Duration `flag:"timeout" desc:"handshake timeout" default:"5s"`
	Recipients []string      `flag:"recipient" desc:"recipient"`
	untagged   string
}

func TestFlagsFromParams_Defaults(t *testing.T) {
	var params promptParams
	flagSet := FlagsFromParams("prompt", &params)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if params.Mode != "menu" {
		t.Errorf("Mode = %q, want menu", params.Mode)
	}
	if params.Height != 5 {
		t.Errorf("Height = %d, want 5", params.Height)
	}
	if params.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", params.Timeout)
	}
	if params.CanInject || params.OutputJSON {
		t.Error("bool flags should default to false")
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field should not become a flag")
	}
}

func TestFlagsFromParams_Parse(t *testing.T) {
	var params promptParams
	flagSet := FlagsFromParams("prompt", &params)
	err := flagSet.Parse([]string{
		"-m", "encrypt-sign",
		"--can-inject",
		"--json",
		"--recipient", "Bob Smith, Jr. <bob@x>",
		"--recipient", "carol@y",
		"--timeout", "250ms",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if params.Mode != "encrypt-sign" || !params.CanInject || !params.OutputJSON {
		t.Errorf("params = %+v", params)
	}
	if len(params.Recipients) != 2 || params.Recipients[0] != "Bob Smith, Jr. <bob@x>" {
		t.Errorf("Recipients = %q, want the comma kept inside one value", params.Recipients)
	}
	if params.Timeout != 250*time.Millisecond {
		t.Errorf("Timeout = %v", params.Timeout)
	}
}

func TestBindFlags_Rejects(t *testing.T) {
	var notStruct string
	if err := BindFlags(&notStruct, FlagsFromParams("x", &struct{}{})); err == nil {
		t.Error("BindFlags(*string) should fail")
	}

	var unsupported struct {
		Ratio float32 `flag:"ratio"`
	}
	if err := BindFlags(&unsupported, FlagsFromParams("x", &struct{}{})); err == nil || !strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("BindFlags(float32) = %v, want unsupported type", err)
	}
}

func TestJSONOutput(t *testing.T) {
	var out bytes.Buffer
	output := JSONOutput{Stdout: &out}

	done, err := output.EmitJSON([]string{"a"})
	if done || err != nil || out.Len() != 0 {
		t.Fatalf("EmitJSON without --json = (%v, %v), wrote %q", done, err, out.String())
	}

	output.OutputJSON = true
	var entries []string
	done, err = output.EmitJSON(entries)
	if !done || err != nil {
		t.Fatalf("EmitJSON = (%v, %v)", done, err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Errorf("nil slice wrote %q, want []", out.String())
	}
}
