package monitor

import "testing"

func TestAnalyzeCommand(t *testing.T) {
	d := NewAbuseDetector()

	tests := []struct {
		name        string
		command     string
		wantPattern string
	}{
		{"chaining semicolon", "ping host; cat /etc/passwd", "shell_chaining"},
		{"command substitution", "ping $(hostname)", "shell_chaining"},
		{"ping flood flag", "ping -f 10.0.0.1", "ping_flood"},
		{"ping zero interval", "ping -i 0 10.0.0.1", "ping_flood"},
		{"zone transfer", "dig example.com axfr", "dns_zone_transfer"},
		{"aws metadata probe", "ping 169.254.169.254", "metadata_service"},
		{"sudo in arguments", "ping sudo-box", "privilege_probe"},
		{"nmap mention", "nmap 10.0.0.0/24", "port_scan_sweep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detections := d.AnalyzeCommand(tt.command)
			for _, det := range detections {
				if det.Pattern == tt.wantPattern {
					if det.Severity == "" || det.Detail == "" {
						t.Errorf("detection %q missing severity or detail", det.Pattern)
					}
					return
				}
			}
			t.Errorf("AnalyzeCommand(%q) = %v, want pattern %q", tt.command, detections, tt.wantPattern)
		})
	}
}

func TestAnalyzeCommandClean(t *testing.T) {
	d := NewAbuseDetector()

	for _, cmd := range []string{
		"ping -c 4 example.com",
		"traceroute 8.8.8.8",
		"dig example.com MX",
		"netstat -an",
	} {
		if got := d.AnalyzeCommand(cmd); len(got) != 0 {
			t.Errorf("AnalyzeCommand(%q) = %v, want no detections", cmd, got)
		}
	}
}
