package ttyguard

import "testing"

func TestShouldSuppressTTYQueries(t *testing.T) {
	tests := []struct {
		args    []string
		envTest bool
		want    bool
	}{
		{nil, false, false},
		{nil, true, true},
		{[]string{"--view", "locations"}, false, false},
		{[]string{"items"}, false, true},
		{[]string{"--timings", "tree", "-q", "drill"}, false, true},
		{[]string{"login"}, false, false},
		{[]string{"location", "create"}, false, false},
		{[]string{"location", "create", "--json"}, false, true},
		{[]string{"--server", "http://nas:7745/api", "items"}, false, true},
		{[]string{"--config=stk.yaml", "login"}, false, false},
		{[]string{"--version"}, false, true},
		{[]string{"-h"}, false, true},
	}
	for _, tt := range tests {
		if got := shouldSuppressTTYQueries(tt.args, tt.envTest); got != tt.want {
			t.Errorf("shouldSuppressTTYQueries(%v, %v) = %v, want %v", tt.args, tt.envTest, got, tt.want)
		}
	}
}
