/*
Copyright © 2019 the BGEM authors.
This file is part of BGEM.

BGEM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BGEM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BGEM.  If not, see <http://www.gnu.org/licenses/>.
*/

package bgemutil

import (
	"bytes"
	"io/ioutil"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func TestFeedstockNames(t *testing.T) {
	names := FeedstockNames()
	if len(names) != len(Feedstocks) {
		t.Fatalf("got %d names, want %d", len(names), len(Feedstocks))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("names are not sorted: %v", names)
	}
	for _, name := range names {
		if _, ok := Feedstocks[name]; !ok {
			t.Errorf("name %q is not in the library", name)
		}
	}
}

func TestFeedstockTemplateRoundTrip(t *testing.T) {
	var b bytes.Buffer
	if err := WriteFeedstockTemplate(&b); err != nil {
		t.Fatal(err)
	}
	library, err := ReadFeedstocks(&b)
	if err != nil {
		t.Fatal(err)
	}
	diff := pretty.Diff(library, Feedstocks)
	if len(diff) != 0 {
		t.Fatal(diff)
	}
}

func TestReadFeedstocks(t *testing.T) {
	const data = `
[Feedstock.Wheat-Straw]
C = 0.485
H = 0.059
O = 0.441
N = 0.007
S = 0.001
Moisture = 0.12
Ash = 0.075
LHV = 16.8
`
	library, err := ReadFeedstocks(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	feed, ok := library["wheat-straw"] // names are lowercased
	if !ok {
		t.Fatalf("missing wheat-straw: %v", library)
	}
	if feed.C != 0.485 || feed.LHV != 16.8 {
		t.Errorf("feed = %+v", feed)
	}

	const bad = `
[Feedstock.Mystery]
C = 1.5
`
	if _, err := ReadFeedstocks(strings.NewReader(bad)); err == nil {
		t.Error("expected an error for a carbon fraction above one")
	} else if !strings.Contains(err.Error(), "Mystery") {
		t.Errorf("error does not name the feedstock: %v", err)
	}
}

func TestFeedstockLibrary(t *testing.T) {
	library, err := feedstockLibrary("")
	if err != nil {
		t.Fatal(err)
	}
	diff := pretty.Diff(library, Feedstocks)
	if len(diff) != 0 {
		t.Fatal(diff)
	}

	const data = `
[Feedstock.Wood-Chips]
C = 0.500
H = 0.060
O = 0.430
N = 0.005
S = 0.005
Moisture = 0.25
Ash = 0.010
LHV = 18.5

[Feedstock.Olive-Pits]
C = 0.513
H = 0.062
O = 0.416
N = 0.004
S = 0.001
Moisture = 0.10
Ash = 0.015
LHV = 19.0
`
	f, err := ioutil.TempFile("", "bgem")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(data); err != nil {
		t.Fatal(err)
	}
	f.Close()

	library, err = feedstockLibrary(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if len(library) != len(Feedstocks)+1 {
		t.Errorf("got %d entries, want %d", len(library), len(Feedstocks)+1)
	}
	if m := library["wood-chips"].Moisture; m != 0.25 {
		t.Errorf("wood-chips was not shadowed: Moisture=%g", m)
	}
	if _, ok := library["olive-pits"]; !ok {
		t.Error("olive-pits was not added")
	}

	if _, err := feedstockLibrary("/nonexistent/feedstocks.toml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
