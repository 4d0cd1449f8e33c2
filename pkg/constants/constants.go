// Package constants holds channel names shared between the router,
// the channel manager and the CLI.
package constants

// Channel names. Internal channels originate inside the process and
// never map to an outbound transport.
const (
	ChannelCLI       = "cli"
	ChannelDiscord   = "discord"
	ChannelScreenlog = "screenlog"
	ChannelSystem    = "system"
)

// IsInternalChannel reports whether messages on this channel must not
// be dispatched to an outbound transport.
func IsInternalChannel(name string) bool {
	switch name {
	case ChannelCLI, ChannelScreenlog, ChannelSystem:
		return true
	}
	return false
}
