/*
Copyright © 2018 the BGEM authors.
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

package bgem

import "testing"

func TestInputMoles(t *testing.T) {
	const testTolerance = 1.e-10

	cases := []struct {
		name  string
		feed  BiomassFeed
		agent GasifyingAgent
		want  MoleBalance
	}{
		{
			name:  "air",
			feed:  baseFeed(),
			agent: AirAgent(0.25),
			want: MoleBalance{
				C:           3.709099991674,
				H:           6.413757384719,
				O:           4.868623529615,
				N:           7.250217534401,
				MoistureH2O: 0.5550929780738,
				AgentO2:     0.9594091910155,
				AgentN2:     3.609206004296,
			},
		},
		{
			name: "steam",
			feed: BiomassFeed{Flow: 50, C: 0.50, H: 0.06, O: 0.43, N: 0.005,
				Moisture: 0.12, Ash: 0.02},
			agent: SteamAgent(0.4),
			want: MoleBalance{
				C:           1.795021230539,
				H:           5.453150152651,
				O:           2.602164175644,
				N:           0.01539230384808,
				MoistureH2O: 0.3330557868443,
				AgentH2O:    1.110185956148,
			},
		},
		{
			name: "oxygen",
			feed: BiomassFeed{Flow: 80, C: 0.50, H: 0.06, O: 0.43, N: 0.005,
				Moisture: 0.08, Ash: 0.03},
			agent: OxygenAgent(0.25),
			want: MoleBalance{
				C:           2.971942386146,
				H:           4.960042821458,
				O:           3.524117559596,
				N:           0.02548440065681,
				MoistureH2O: 0.3552595059672,
				AgentO2:     0.6250390649416,
			},
		},
		{
			name:  "airsteam",
			feed:  baseFeed(),
			agent: AirSteamAgent(0.2, 0.3),
			want: MoleBalance{
				C:           3.709099991674,
				H:           9.744315253162,
				O:           6.150138787431,
				N:           5.806535132683,
				MoistureH2O: 0.5550929780738,
				AgentH2O:    1.665278934221,
				AgentO2:     0.7675273528124,
				AgentN2:     2.887364803437,
			},
		},
	}
	for _, c := range cases {
		got, err := c.feed.InputMoles(c.agent)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		fields := []struct {
			name      string
			got, want float64
		}{
			{"C", got.C, c.want.C},
			{"H", got.H, c.want.H},
			{"O", got.O, c.want.O},
			{"N", got.N, c.want.N},
			{"MoistureH2O", got.MoistureH2O, c.want.MoistureH2O},
			{"AgentH2O", got.AgentH2O, c.want.AgentH2O},
			{"AgentO2", got.AgentO2, c.want.AgentO2},
			{"AgentN2", got.AgentN2, c.want.AgentN2},
			{"N2", got.N2(), c.want.N / 2},
		}
		for _, f := range fields {
			if f.got == 0 && f.want == 0 {
				continue
			}
			if different(f.got, f.want, testTolerance) {
				t.Errorf("%s: %s: got %g, want %g", c.name, f.name, f.got, f.want)
			}
		}
	}
}

func TestInputMolesInvalidAgent(t *testing.T) {
	_, err := baseFeed().InputMoles(GasifyingAgent{Kind: AgentKind(99)})
	if err == nil {
		t.Fatal("expected an error for an unknown agent kind")
	}
}

func TestFeedFractions(t *testing.T) {
	const testTolerance = 1.e-12

	f := baseFeed()
	if different(f.DryFraction(), 0.90, testTolerance) {
		t.Errorf("dry fraction: got %g", f.DryFraction())
	}
	if different(f.DAFFraction(), 0.90*0.99, testTolerance) {
		t.Errorf("DAF fraction: got %g", f.DAFFraction())
	}
	if different(f.FractionSum(), 0.995, testTolerance) {
		t.Errorf("fraction sum: got %g", f.FractionSum())
	}
}

func TestStoichiometricO2(t *testing.T) {
	const testTolerance = 1.e-10

	if got, want := baseFeed().StoichiometricO2(), 0.04307111968644; different(got, want, testTolerance) {
		t.Errorf("got %g, want %g", got, want)
	}

	// An oxygen-rich pseudo-fuel has no oxidant demand at all.
	rich := BiomassFeed{Flow: 100, C: 0.05, H: 0.02, O: 0.90}
	if got := rich.StoichiometricO2(); got != 0 {
		t.Errorf("expected clamped demand, got %g", got)
	}
	b, err := rich.InputMoles(AirAgent(0.3))
	if err != nil {
		t.Fatal(err)
	}
	if b.AgentO2 != 0 || b.AgentN2 != 0 {
		t.Errorf("expected no agent air: O2=%g N2=%g", b.AgentO2, b.AgentN2)
	}
}

func TestConditions(t *testing.T) {
	const testTolerance = 1.e-12

	c := Conditions{Temp: 800, Pressure: 1}
	if different(c.TempK(), 1073.15, testTolerance) {
		t.Errorf("TempK: got %g", c.TempK())
	}
	if different(c.PressureAtm(), 0.9869232667160, 1.e-10) {
		t.Errorf("PressureAtm: got %g", c.PressureAtm())
	}
	if p := (Conditions{Temp: 800, Pressure: 1.01325}).PressureAtm(); different(p, 1, testTolerance) {
		t.Errorf("1.01325 bar should be 1 atm, got %g", p)
	}
}

func TestParseAgentKind(t *testing.T) {
	cases := map[string]AgentKind{
		"air":         Air,
		"Air":         Air,
		"steam":       Steam,
		"oxygen":      Oxygen,
		"airsteam":    AirSteamMix,
		"air-steam":   AirSteamMix,
		"airsteammix": AirSteamMix,
	}
	for s, want := range cases {
		got, err := ParseAgentKind(s)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if got != want {
			t.Errorf("%q: got %v, want %v", s, got, want)
		}
	}
	if _, err := ParseAgentKind("plasma"); err == nil {
		t.Error("expected an error for an unsupported agent")
	}
	if Air.String() != "air" || Steam.String() != "steam" ||
		Oxygen.String() != "oxygen" || AirSteamMix.String() != "airsteam" {
		t.Error("agent kind names changed")
	}
}

func TestAgentConstructors(t *testing.T) {
	if a := AirAgent(0.25); a.Kind != Air || a.ER != 0.25 {
		t.Errorf("AirAgent: %+v", a)
	}
	if a := SteamAgent(0.4); a.Kind != Steam || a.SteamRatio != 0.4 {
		t.Errorf("SteamAgent: %+v", a)
	}
	if a := OxygenAgent(0.3); a.Kind != Oxygen || a.OxygenRatio != 0.3 {
		t.Errorf("OxygenAgent: %+v", a)
	}
	if a := AirSteamAgent(0.2, 0.3); a.Kind != AirSteamMix || a.ER != 0.2 || a.SteamRatio != 0.3 {
		t.Errorf("AirSteamAgent: %+v", a)
	}
}
