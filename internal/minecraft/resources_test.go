package minecraft

import "testing"

func TestParseResources(t *testing.T) {
	output := "CPU_USAGE=12.5 RAM_DATA=2048/7982 DISK_DATA=9.1G/49G 20%\n"
	res := ParseResources(output)
	if res.CPUPercent != 12.5 {
		t.Errorf("CPUPercent = %v", res.CPUPercent)
	}
	if res.RAMUsedMB != 2048 || res.RAMTotalMB != 7982 {
		t.Errorf("RAM = %d/%d", res.RAMUsedMB, res.RAMTotalMB)
	}
	if res.DiskUsed != "9.1G" || res.DiskTotal != "49G" {
		t.Errorf("disk = %s/%s", res.DiskUsed, res.DiskTotal)
	}
	if res.DiskPercent != "20%" {
		t.Errorf("DiskPercent = %q", res.DiskPercent)
	}
}

func TestParseResourcesDegradedProbe(t *testing.T) {
	// mpstat missing, CPU field empty; the rest still parses.
	res := ParseResources("CPU_USAGE= RAM_DATA=512/1024 DISK_DATA=1G/10G 10%")
	if res.CPUPercent != 0 {
		t.Errorf("CPUPercent = %v, want zero", res.CPUPercent)
	}
	if res.RAMTotalMB != 1024 {
		t.Errorf("RAMTotalMB = %d", res.RAMTotalMB)
	}
}

func TestParseResourcesGarbage(t *testing.T) {
	res := ParseResources("bash: free: command not found")
	if res != (Resources{}) {
		t.Errorf("garbage produced non-zero snapshot: %+v", res)
	}
}
