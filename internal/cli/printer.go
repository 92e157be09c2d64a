package cli

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/pterm/pterm"

	"github.com/Pablu23/tftpc/internal/client"
	"github.com/Pablu23/tftpc/internal/metrics"
)

func printFields(printer pterm.PrefixPrinter, msg string, fields map[string]any) {
	printer.Println(msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pterm.Printf("  %s: %v\n", k, fields[k])
	}
}

func report(res *client.Result, file string, collector *metrics.Collector, showMetrics bool) {
	fields := map[string]any{
		"file":     file,
		"transfer": res.Transfer,
		"blocks":   res.Blocks,
		"bytes":    res.Bytes,
		"blake2b":  hex.EncodeToString(res.Digest),
		"elapsed":  res.Elapsed.Round(time.Millisecond),
	}
	if res.Peer != nil {
		fields["peer"] = res.Peer.String()
	}
	if res.Duplicates > 0 {
		fields["duplicates"] = res.Duplicates
	}
	printFields(pterm.Success, fmt.Sprintf("%s complete", res.Direction), fields)

	if showMetrics {
		renderMetrics(collector.Snapshot())
	}
}

func renderMetrics(snap metrics.Snapshot) {
	data := pterm.TableData{
		{"Counter", "Value"},
		{"packets sent", fmt.Sprint(snap.PacketsSent)},
		{"packets received", fmt.Sprint(snap.PacketsReceived)},
		{"bytes sent", fmt.Sprint(snap.BytesSent)},
		{"bytes received", fmt.Sprint(snap.BytesReceived)},
		{"timeouts", fmt.Sprint(snap.Timeouts)},
		{"retransmits", fmt.Sprint(snap.Retransmits)},
		{"duplicates", fmt.Sprint(snap.Duplicates)},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}
