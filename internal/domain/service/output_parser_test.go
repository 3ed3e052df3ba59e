package service

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

func TestSplitRows(t *testing.T) {
	tests := []struct {
		name   string
		output string
		delim  string
		want   [][]string
	}{
		{"empty output", "", " ", [][]string{}},
		{"trailing newline", "a b\nc d\n", " ", [][]string{{"a", "b"}, {"c", "d"}}},
		{"no trailing newline", "a b\nc d", " ", [][]string{{"a", "b"}, {"c", "d"}}},
		{"crlf", "a,b\r\nc,d\r\n", ",", [][]string{{"a", "b"}, {"c", "d"}}},
		{"empty fields kept", "a  b\n", " ", [][]string{{"a", "", "b"}}},
		{"blank line", "a\n\nb\n", " ", [][]string{{"a"}, {""}, {"b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitRows(tt.output, tt.delim)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitRows(%q) = %#v, want %#v", tt.output, got, tt.want)
			}
		})
	}
}

func TestParsePS_StripsHeaderColons(t *testing.T) {
	p := NewOutputParser()

	output := "USER PID STAT: COMMAND\nroot 1 Ss: /sbin/init\n"
	record, err := p.ParsePS(output)
	if err != nil {
		t.Fatalf("ParsePS() error = %v", err)
	}

	want := [][]string{
		{"USER", "PID", "STAT", "COMMAND"},
		{"root", "1", "Ss:", "/sbin/init"},
	}
	if !reflect.DeepEqual(record.Table(), want) {
		t.Fatalf("ParsePS() = %#v, want %#v", record.Table(), want)
	}
}

func TestParsePS_EmptyOutput(t *testing.T) {
	_, err := NewOutputParser().ParsePS("")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseUptime(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    int64
		wantErr bool
	}{
		{"two hours", "7200.00 7100.00", 2, false},
		{"truncates", "7199.99 100.00\n", 1, false},
		{"less than an hour", "59.12 10.00\n", 0, false},
		{"single field", "7200.00", 0, true},
		{"not a number", "abc 7100.00", 0, true},
		{"empty", "", 0, true},
	}

	p := NewOutputParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := p.ParseUptime(tt.output)
			if tt.wantErr {
				if !errors.Is(err, ErrParse) {
					t.Fatalf("expected ErrParse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseUptime() error = %v", err)
			}
			if record.Kind() != valueobject.KindScalar || record.Scalar() != tt.want {
				t.Errorf("ParseUptime(%q) = %v %d, want scalar %d", tt.output, record.Kind(), record.Scalar(), tt.want)
			}
		})
	}
}

func TestParseUptimeMillis(t *testing.T) {
	p := NewOutputParser()

	record, err := p.ParseUptimeMillis("7200000\n")
	if err != nil {
		t.Fatalf("ParseUptimeMillis() error = %v", err)
	}
	if record.Scalar() != 2 {
		t.Errorf("expected 2 hours, got %d", record.Scalar())
	}

	record, err = p.ParseUptimeMillis("1.23457e+07\n")
	if err != nil {
		t.Fatalf("ParseUptimeMillis() exponent form error = %v", err)
	}
	if record.Scalar() != 3 {
		t.Errorf("expected 3 hours, got %d", record.Scalar())
	}

	if _, err := p.ParseUptimeMillis("n/a"); !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestParseWhereis(t *testing.T) {
	record, err := NewOutputParser().ParseWhereis("php,/usr/bin/php\nruby,Not Installed\n")
	if err != nil {
		t.Fatalf("ParseWhereis() error = %v", err)
	}

	want := [][]string{
		{"php", "/usr/bin/php"},
		{"ruby", "Not Installed"},
	}
	if !reflect.DeepEqual(record.Table(), want) {
		t.Fatalf("ParseWhereis() = %#v, want %#v", record.Table(), want)
	}
}

func TestParseUsers(t *testing.T) {
	record, err := NewOutputParser().ParseUsers("system root /root\nuser alice /home/alice\n")
	if err != nil {
		t.Fatalf("ParseUsers() error = %v", err)
	}

	want := [][]string{
		{"system", "root", "/root"},
		{"user", "alice", "/home/alice"},
	}
	if !reflect.DeepEqual(record.Table(), want) {
		t.Fatalf("ParseUsers() = %#v, want %#v", record.Table(), want)
	}
}

func TestParseMem(t *testing.T) {
	p := NewOutputParser()

	output := "total used free shared\nMem: 15896 3012 8123\nSwap: 2047 0 2047\n"
	record, err := p.ParseMem(output)
	if err != nil {
		t.Fatalf("ParseMem() error = %v", err)
	}

	want := []string{"Mem:", "15896", "3012", "8123"}
	if record.Kind() != valueobject.KindRow || !reflect.DeepEqual(record.Row(), want) {
		t.Fatalf("ParseMem() = %v %#v, want row %#v", record.Kind(), record.Row(), want)
	}

	if _, err := p.ParseMem("total used free shared\n"); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for header-only output, got %v", err)
	}
}

func TestParseDF(t *testing.T) {
	p := NewOutputParser()

	tests := []struct {
		name   string
		output string
		want   [][]string
	}{
		{
			name:   "header excluded",
			output: "Filesystem Size Used Avail Use% Mounted\n/dev/sda1 50G 20G 30G 40% /\ntmpfs 1G 0 1G 0% /run\n",
			want: [][]string{
				{"/dev/sda1", "50G", "20G", "30G", "40%", "/"},
				{"tmpfs", "1G", "0", "1G", "0%", "/run"},
			},
		},
		{
			name:   "header only",
			output: "Filesystem Size Used Avail Use% Mounted\n",
			want:   [][]string{},
		},
		{
			name:   "empty",
			output: "",
			want:   [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := p.ParseDF(tt.output)
			if err != nil {
				t.Fatalf("ParseDF() error = %v", err)
			}
			if !reflect.DeepEqual(record.Table(), tt.want) {
				t.Errorf("ParseDF() = %#v, want %#v", record.Table(), tt.want)
			}
		})
	}
}

func TestCheckEncoding(t *testing.T) {
	p := NewOutputParser()

	if err := p.CheckEncoding("Ubuntu 22.04 LTS \\n \\l\nпривет\n"); err != nil {
		t.Fatalf("CheckEncoding() valid UTF-8 error = %v", err)
	}

	err := p.CheckEncoding("Debian \xe9\n")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for Latin-1 output, got %v", err)
	}
	if !strings.Contains(err.Error(), "byte 7") {
		t.Errorf("error should name the offset: %v", err)
	}
}
