package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultNamespace  = "tftpc"
	subsystemTransfer = "transfer"
)

// Collector counts TFTP client traffic. A nil *Collector is valid and
// records nothing, so sessions can observe unconditionally.
type Collector struct {
	mu       sync.Mutex
	registry *prometheus.Registry

	packetsSent     *prometheus.CounterVec
	packetsReceived *prometheus.CounterVec
	payloadBytes    *prometheus.CounterVec
	transfers       *prometheus.CounterVec
	timeouts        prometheus.Counter
	retransmits     prometheus.Counter
	duplicates      prometheus.Counter

	snapshot Snapshot
}

// Snapshot is a point-in-time copy of the totals.
type Snapshot struct {
	PacketsSent     uint64
	PacketsReceived uint64
	BytesSent       uint64
	BytesReceived   uint64
	Timeouts        uint64
	Retransmits     uint64
	Duplicates      uint64
	Succeeded       uint64
	Failed          uint64
}

func NewCollector(namespace string) *Collector {
	if strings.TrimSpace(namespace) == "" {
		namespace = defaultNamespace
	}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		packetsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTransfer,
			Name:      "packets_sent_total",
			Help:      "Datagrams sent, by opcode.",
		}, []string{"opcode"}),
		packetsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTransfer,
			Name:      "packets_received_total",
			Help:      "Datagrams received, by opcode.",
		}, []string{"opcode"}),
		payloadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTransfer,
			Name:      "payload_bytes_total",
			Help:      "File payload bytes moved, by direction.",
		}, []string{"direction"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTransfer,
			Name:      "transfers_total",
			Help:      "Finished transfers, by direction and result.",
		}, []string{"direction", "result"}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTransfer,
			Name:      "timeouts_total",
			Help:      "Receive timeouts.",
		}),
		retransmits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTransfer,
			Name:      "retransmits_total",
			Help:      "Packets sent again after a timeout.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTransfer,
			Name:      "duplicate_blocks_total",
			Help:      "DATA blocks received more than once.",
		}),
	}
	c.registry.MustRegister(
		c.packetsSent,
		c.packetsReceived,
		c.payloadBytes,
		c.transfers,
		c.timeouts,
		c.retransmits,
		c.duplicates,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) ObservePacketSend(opcode string) {
	if c == nil {
		return
	}
	c.packetsSent.WithLabelValues(opcode).Inc()
	c.mu.Lock()
	c.snapshot.PacketsSent++
	c.mu.Unlock()
}

func (c *Collector) ObservePacketReceive(opcode string) {
	if c == nil {
		return
	}
	c.packetsReceived.WithLabelValues(opcode).Inc()
	c.mu.Lock()
	c.snapshot.PacketsReceived++
	c.mu.Unlock()
}

// ObservePayload records file bytes. Direction is "upload" or "download".
func (c *Collector) ObservePayload(direction string, bytes int) {
	if c == nil || bytes <= 0 {
		return
	}
	c.payloadBytes.WithLabelValues(direction).Add(float64(bytes))
	c.mu.Lock()
	if direction == "upload" {
		c.snapshot.BytesSent += uint64(bytes)
	} else {
		c.snapshot.BytesReceived += uint64(bytes)
	}
	c.mu.Unlock()
}

func (c *Collector) ObserveTimeout() {
	if c == nil {
		return
	}
	c.timeouts.Inc()
	c.mu.Lock()
	c.snapshot.Timeouts++
	c.mu.Unlock()
}

func (c *Collector) ObserveRetransmit() {
	if c == nil {
		return
	}
	c.retransmits.Inc()
	c.mu.Lock()
	c.snapshot.Retransmits++
	c.mu.Unlock()
}

func (c *Collector) ObserveDuplicate() {
	if c == nil {
		return
	}
	c.duplicates.Inc()
	c.mu.Lock()
	c.snapshot.Duplicates++
	c.mu.Unlock()
}

func (c *Collector) ObserveTransfer(direction string, ok bool) {
	if c == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	c.transfers.WithLabelValues(direction, result).Inc()
	c.mu.Lock()
	if ok {
		c.snapshot.Succeeded++
	} else {
		c.snapshot.Failed++
	}
	c.mu.Unlock()
}

func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}
