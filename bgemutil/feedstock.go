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
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/thermomodel/bgem"
)

// Feedstocks is the built-in library of biomass ultimate analyses.
// Elemental fractions are on a dry-ash-free mass basis, moisture is
// as received, ash is on the dry basis, and heating values are for
// the dry fuel. Flow is left zero; it comes from the run
// configuration.
var Feedstocks = map[string]bgem.BiomassFeed{
	"wood-chips": {
		C: 0.500, H: 0.060, O: 0.430, N: 0.005, S: 0.005,
		Moisture: 0.10, Ash: 0.010, LHV: 18.5,
	},
	"rice-husk": {
		C: 0.494, H: 0.062, O: 0.432, N: 0.009, S: 0.003,
		Moisture: 0.09, Ash: 0.170, LHV: 14.9,
	},
	"bagasse": {
		C: 0.492, H: 0.060, O: 0.438, N: 0.004, S: 0.006,
		Moisture: 0.15, Ash: 0.030, LHV: 17.3,
	},
	"miscanthus": {
		C: 0.489, H: 0.058, O: 0.445, N: 0.006, S: 0.002,
		Moisture: 0.12, Ash: 0.028, LHV: 17.6,
	},
	"almond-shell": {
		C: 0.506, H: 0.062, O: 0.423, N: 0.007, S: 0.002,
		Moisture: 0.08, Ash: 0.012, LHV: 18.2,
	},
}

// FeedstockNames returns the names of the built-in feedstocks in
// alphabetical order.
func FeedstockNames() []string {
	names := make([]string, 0, len(Feedstocks))
	for name := range Feedstocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// feedstockFile is the layout of a feedstock library file: one
// [Feedstock.NAME] table per analysis.
type feedstockFile struct {
	Feedstock map[string]bgem.BiomassFeed
}

// ReadFeedstocks decodes a TOML feedstock library. Names are matched
// without regard to case.
func ReadFeedstocks(r io.Reader) (map[string]bgem.BiomassFeed, error) {
	var f feedstockFile
	if _, err := toml.DecodeReader(r, &f); err != nil {
		return nil, fmt.Errorf("bgemutil: reading feedstock file: %v", err)
	}
	o := make(map[string]bgem.BiomassFeed, len(f.Feedstock))
	for name, feed := range f.Feedstock {
		if err := checkFeed(feed); err != nil {
			return nil, fmt.Errorf("feedstock %q: %v", name, err)
		}
		o[strings.ToLower(name)] = feed
	}
	return o, nil
}

// feedstockLibrary returns the built-in feedstocks, extended and
// possibly shadowed by the analyses in file if it is non-empty.
func feedstockLibrary(file string) (map[string]bgem.BiomassFeed, error) {
	library := make(map[string]bgem.BiomassFeed, len(Feedstocks))
	for name, feed := range Feedstocks {
		library[name] = feed
	}
	if file == "" {
		return library, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("bgemutil: opening feedstock file: %v", err)
	}
	defer f.Close()
	extra, err := ReadFeedstocks(f)
	if err != nil {
		return nil, err
	}
	for name, feed := range extra {
		library[name] = feed
	}
	return library, nil
}

// WriteFeedstockTemplate writes the built-in feedstock library as a
// TOML file that can be edited and passed back through
// FeedstockFile.
func WriteFeedstockTemplate(w io.Writer) error {
	header := `# BGEM feedstock library.
# Elemental fractions are dry-ash-free mass fractions, Moisture is
# as received, Ash is on the dry basis, and LHV is the dry lower
# heating value [MJ/kg]. Flow is ignored here.

`
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("bgemutil: writing feedstock template: %v", err)
	}
	if err := toml.NewEncoder(w).Encode(feedstockFile{Feedstock: Feedstocks}); err != nil {
		return fmt.Errorf("bgemutil: writing feedstock template: %v", err)
	}
	return nil
}
