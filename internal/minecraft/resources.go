package minecraft

import (
	"fmt"
	"strconv"
	"strings"
)

// Resources is a point-in-time snapshot of host utilization.
type Resources struct {
	CPUPercent  float64 `json:"cpuPercent"`
	RAMUsedMB   int64   `json:"ramUsedMB"`
	RAMTotalMB  int64   `json:"ramTotalMB"`
	DiskUsed    string  `json:"diskUsed"`
	DiskTotal   string  `json:"diskTotal"`
	DiskPercent string  `json:"diskPercent"`
}

// ResourcesCommand probes CPU, RAM, and disk usage and prints a single
// KEY=VALUE line. mpstat is preferred for CPU; top is the fallback on hosts
// without sysstat.
func ResourcesCommand() string {
	return `CPU_USAGE=$( (command -v mpstat >/dev/null 2>&1 && LC_ALL=C mpstat 1 1 | awk '/Average/ {print 100 - $12}') || ` +
		`(LC_ALL=C top -bn1 | awk -v FS='[ ,]+' '/Cpu\(s\)/ {for(i=1;i<=NF;i++) if ($i=="id") {print 100-$(i-1)}}') )
RAM_DATA=$(free -m | awk '/Mem:/ {print $3"/"$2}')
DISK_DATA=$(df -h / | awk 'NR==2 {print $3"/"$2" "$5}')
echo CPU_USAGE=${CPU_USAGE} RAM_DATA=${RAM_DATA} DISK_DATA=${DISK_DATA}`
}

// ParseResources decodes the KEY=VALUE probe line. Fields that fail to parse
// are left at their zero value rather than failing the whole snapshot; a
// degraded host should still report what it can.
func ParseResources(output string) Resources {
	kv := make(map[string]string)
	for _, tok := range strings.Fields(strings.TrimSpace(output)) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok || k == "" {
			continue
		}
		// DISK_DATA is two fields ("used/total percent"); the percent
		// arrives as a separate token without '=' and is skipped here.
		// The loop below recovers it.
		kv[k] = v
	}

	var res Resources
	if v, err := strconv.ParseFloat(kv["CPU_USAGE"], 64); err == nil {
		res.CPUPercent = v
	}
	if used, total, ok := strings.Cut(kv["RAM_DATA"], "/"); ok {
		res.RAMUsedMB, _ = strconv.ParseInt(used, 10, 64)
		res.RAMTotalMB, _ = strconv.ParseInt(total, 10, 64)
	}
	if disk := kv["DISK_DATA"]; disk != "" {
		if used, total, ok := strings.Cut(disk, "/"); ok {
			res.DiskUsed = used
			res.DiskTotal = total
		}
	}
	// The disk percent trails DISK_DATA separated by a space, so it shows
	// up as a bare token ending in '%'.
	for _, tok := range strings.Fields(output) {
		if strings.HasSuffix(tok, "%") && !strings.Contains(tok, "=") {
			res.DiskPercent = tok
		}
	}
	return res
}

// String renders the snapshot for logs.
func (r Resources) String() string {
	return fmt.Sprintf("cpu=%.1f%% ram=%d/%dMB disk=%s/%s (%s)",
		r.CPUPercent, r.RAMUsedMB, r.RAMTotalMB, r.DiskUsed, r.DiskTotal, r.DiskPercent)
}
