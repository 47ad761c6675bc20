package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"scene-studio/internal/scene"
)

// parseNumber accepts a float literal, pi or tau, optionally negated and scaled by one
// "*k" or "/k" factor: 2, -0.5, pi/2, -pi/4, 2*pi.
func parseNumber(s string) (float32, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	var v float32
	if i := strings.IndexAny(s, "*/"); i > 0 {
		a, err := factor(s[:i])
		if err != nil {
			return 0, err
		}
		b, err := factor(s[i+1:])
		if err != nil {
			return 0, err
		}
		if s[i] == '*' {
			v = a * b
		} else {
			if b == 0 {
				return 0, fmt.Errorf("division by zero in %q", s)
			}
			v = a / b
		}
	} else {
		f, err := factor(s)
		if err != nil {
			return 0, err
		}
		v = f
	}
	if neg {
		v = -v
	}
	return v, nil
}

func factor(s string) (float32, error) {
	switch s {
	case "pi":
		return math32.Pi, nil
	case "tau":
		return 2 * math32.Pi, nil
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	v := float32(f)
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// parseNumbers splits a comma list into exactly n numbers.
func parseNumbers(s string, n int) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated numbers, got %q", n, s)
	}
	out := make([]float32, n)
	for i, p := range parts {
		v, err := parseNumber(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseVec3(s string) (mgl32.Vec3, error) {
	v, err := parseNumbers(s, 3)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, nil
}

// parseScale accepts either x,y,z or a single uniform factor.
func parseScale(s string) (mgl32.Vec3, error) {
	if !strings.Contains(s, ",") {
		v, err := parseNumber(s)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		return mgl32.Vec3{v, v, v}, nil
	}
	return parseVec3(s)
}

func parseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}

func parseUnit(s string) (float32, error) {
	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("%q is outside 0..1", s)
	}
	return v, nil
}

func parseColor(s string) (scene.Color, error) {
	return scene.ParseColor(s)
}
