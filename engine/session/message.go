package session

import (
	"github.com/NIKEA-SOFT/HelenaSystems/engine/logx"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/transport"
)

// MessageFlag is the application-facing delivery mode; it maps onto the
// transport's PacketFlags bitmask rather than being identical to it.
type MessageFlag uint8

const (
	// MessageNone maps to no transport flags (0).
	MessageNone MessageFlag = iota
	// MessageReliable maps to reliable+sequenced delivery.
	MessageReliable
	// MessageFragmented maps to unreliable+fragmented delivery.
	MessageFragmented
	// MessageUnsequenced maps to unreliable+unsequenced delivery.
	MessageUnsequenced
)

func (m MessageFlag) toTransport() transport.PacketFlags {
	switch m {
	case MessageNone:
		return 0
	case MessageReliable:
		return transport.FlagReliable
	case MessageFragmented:
		return transport.FlagFragmented
	case MessageUnsequenced:
		return transport.FlagUnsequenced
	default:
		return transport.FlagReliable
	}
}

// messageFlagFromTransport inverts toTransport for an incoming packet. An
// unrecognized combination of transport flag bits is coerced to
// MessageReliable with a warning, per the spec's receive-side rule.
func messageFlagFromTransport(f transport.PacketFlags) MessageFlag {
	switch f {
	case 0:
		return MessageNone
	case transport.FlagReliable:
		return MessageReliable
	case transport.FlagFragmented:
		return MessageFragmented
	case transport.FlagUnsequenced:
		return MessageUnsequenced
	default:
		logx.Warnf("session: unrecognized transport flag combination %v on receive, coercing to Reliable", f)
		return MessageReliable
	}
}
