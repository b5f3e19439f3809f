/*
Copyright 2025 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package stringutil

import (
	"strings"
	"testing"
)

func TestWalkByStep(t *testing.T) {
	tests := []struct {
		name string
		in   string
		sep  byte
		want []string
	}{
		{name: "select tag", in: "SELECT 2", sep: ' ', want: []string{"SELECT", "2"}},
		{name: "insert tag", in: "INSERT 0 8", sep: ' ', want: []string{"INSERT", "0", "8"}},
		{name: "single word", in: "BEGIN", sep: ' ', want: []string{"BEGIN"}},
		{name: "empty", in: "", sep: ' ', want: nil},
		{name: "repeated separators", in: "a  b", sep: ' ', want: []string{"a", "b"}},
		{name: "trailing separator", in: "DROP TABLE ", sep: ' ', want: []string{"DROP", "TABLE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			WalkByStep(tt.in, tt.sep, func(i int, part string) bool {
				if i != len(got) {
					t.Errorf("index %d out of order, expected %d", i, len(got))
				}
				got = append(got, part)
				return true
			})
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("part %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestWalkByStepEarlyStop(t *testing.T) {
	var seen int
	WalkByStep("INSERT 0 8", ' ', func(i int, part string) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Errorf("expected iteration to stop after 1 part, saw %d", seen)
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"@total", "total"},
		{":total", "total"},
		{"total", "total"},
		{"Total", "total"},
		{"@RowCount", "rowcount"},
		{`"MixedCase"`, "MixedCase"},
		{"", ""},
		{"@", ""},
	}
	for _, tt := range tests {
		if got := CleanName(tt.in); got != tt.want {
			t.Errorf("CleanName(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestCleanNameNoAllocForLower(t *testing.T) {
	in := "already_lower"
	if got := CleanName(in); got != in {
		t.Fatalf("expected %q, got %q", in, got)
	}
	allocs := testing.AllocsPerRun(100, func() {
		_ = CleanName(in)
	})
	if allocs != 0 {
		t.Errorf("expected zero allocations for lower-case names, got %v", allocs)
	}
}

// BenchmarkWalkByStep compares the allocation-free walk against
// strings.Split for command-tag parsing.
func BenchmarkWalkByStep(b *testing.B) {
	tags := []string{"SELECT 2", "INSERT 0 8", "UPDATE 10", "BEGIN"}
	b.Run("WalkByStep", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			for _, s := range tags {
				WalkByStep(s, ' ', func(_ int, part string) bool {
					_ = part
					return true
				})
			}
		}
	})
	b.Run("StringsSplit", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			for _, s := range tags {
				for _, part := range strings.Split(s, " ") {
					_ = part
				}
			}
		}
	})
}
