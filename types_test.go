package prologix

import "testing"

func TestMacAddressString(t *testing.T) {
	mac := MacAddress{0x00, 0x80, 0xC1, 0xAB, 0x0F, 0xFE}
	if got := mac.String(); got != "00:80:C1:AB:0F:FE" {
		t.Errorf("got %q", got)
	}
}

func TestMacAddressIsBroadcast(t *testing.T) {
	if !BroadcastMAC.IsBroadcast() {
		t.Error("broadcast sentinel not recognized")
	}
	if (MacAddress{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE}).IsBroadcast() {
		t.Error("near-broadcast address misclassified")
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"mode bootloader", ModeBootloader.String(), "bootloader"},
		{"mode application", ModeApplication.String(), "application"},
		{"alert ok", AlertOk.String(), "ok"},
		{"alert warning", AlertWarning.String(), "warning"},
		{"alert error", AlertError.String(), "error"},
		{"ip dynamic", IPTypeDynamic.String(), "dynamic"},
		{"ip static", IPTypeStatic.String(), "static"},
		{"reboot bootloader", RebootBootloader.String(), "bootloader"},
		{"reboot reset", RebootReset.String(), "reset"},
		{"command identify", CommandIdentify.String(), "identify"},
		{"command reboot", CommandReboot.String(), "reboot"},
		{"command unknown", Command(0x7F).String(), "command(0x7F)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q want %q", tt.got, tt.want)
			}
		})
	}
}

func TestControllerInfoName(t *testing.T) {
	var info ControllerInfo
	copy(info.RawName[:], "bench-3\x00\x00garbage")
	if got := info.Name(); got != "bench-3" {
		t.Errorf("got %q", got)
	}

	// No NUL terminator: the full field is the name
	var full ControllerInfo
	for i := range full.RawName {
		full.RawName[i] = 'x'
	}
	if got := full.Name(); len(got) != NameLength {
		t.Errorf("length=%d want=%d", len(got), NameLength)
	}
}
