package loudness

// Channel describes the position of one input channel, which determines
// its weight in the loudness sum per ITU-R BS.1770-4 table 5.
type Channel int

const (
	// ChannelUnused excludes the channel from loudness measurement. Its
	// samples still count toward peak metering.
	ChannelUnused Channel = iota

	// ChannelLeft is a front-left speaker position.
	ChannelLeft

	// ChannelRight is a front-right speaker position.
	ChannelRight

	// ChannelCenter is a front-center speaker position.
	ChannelCenter

	// ChannelLeftSurround is a rear/side-left speaker position.
	ChannelLeftSurround

	// ChannelRightSurround is a rear/side-right speaker position.
	ChannelRightSurround

	// ChannelDualMono marks a single channel carrying dual-mono program
	// material; it is counted twice so its loudness matches the same
	// signal played over a stereo pair.
	ChannelDualMono
)

// Weight returns the channel's energy weight in the loudness sum.
func (c Channel) Weight() float64 {
	switch c {
	case ChannelLeft, ChannelRight, ChannelCenter:
		return 1.0
	case ChannelLeftSurround, ChannelRightSurround:
		return 1.41
	case ChannelDualMono:
		return 2.0
	default:
		return 0
	}
}

func (c Channel) valid() bool {
	return c >= ChannelUnused && c <= ChannelDualMono
}

// defaultChannelMap assigns conventional positions by channel count:
// mono through 5.1-style layouts get the usual speaker order, anything
// wider leaves the extra channels unused.
func defaultChannelMap(channels int) []Channel {
	m := make([]Channel, channels)

	switch channels {
	case 4:
		copy(m, []Channel{ChannelLeft, ChannelRight, ChannelLeftSurround, ChannelRightSurround})
	case 5:
		copy(m, []Channel{ChannelLeft, ChannelRight, ChannelCenter, ChannelLeftSurround, ChannelRightSurround})
	default:
		layout := []Channel{
			ChannelLeft, ChannelRight, ChannelCenter,
			ChannelUnused, ChannelLeftSurround, ChannelRightSurround,
		}

		for i := range m {
			if i < len(layout) {
				m[i] = layout[i]
			} else {
				m[i] = ChannelUnused
			}
		}
	}

	return m
}
