package chat

import "strings"

// Context selects the keyword table used when no model answers.
type Context string

const (
	ContextServo      Context = "servo-motor"
	ContextUltrasonic Context = "ultrasonic-sensor"
	ContextDynamixel  Context = "dynamixel"
	ContextROS2       Context = "ros2"
	ContextDefault    Context = "default"
)

// GlobalDefault answers when neither a keyword nor a context default applies.
const GlobalDefault = "Welcome! Ask me debugging questions related to this lesson."

// Entry is one keyword and the reply it triggers.
type Entry struct {
	Keyword string
	Reply   string
}

type topic struct {
	entries []Entry
	def     string
}

// Entries are matched in the order listed here.
var knowledgeBase = map[Context]topic{
	ContextServo: {
		entries: []Entry{
			{"jitter", "Servo jittering is commonly caused by unstable power or noisy PWM signals."},
			{"not moving", "Check GND, power, and confirm the PWM pin matches your code."},
			{"overheat", "Overheating happens if the servo stalls or is powered incorrectly."},
		},
		def: "Ask me about servo jitter, wiring problems, PWM, or overheating.",
	},
	ContextUltrasonic: {
		entries: []Entry{
			{"no reading", "No readings normally mean the echo signal isn't returning — check wiring."},
			{"range", "Most HC‑SR04 sensors work best between 4cm–200cm."},
			{"wiring", "Ensure Trig → digital output and Echo → digital input."},
		},
		def: "Ask about wiring, echo issues, or range limitations.",
	},
	ContextDynamixel: {
		entries: []Entry{
			{"torque", "Torque mode increases grip but can overheat under block load."},
			{"position", "Position mode uses internal PID. Great for robotic arms."},
			{"velocity", "Velocity mode is used for wheels or continuous movement."},
			{"id", "Each Dynamixel must have a unique ID. Conflicts cause failures."},
			{"overheat", "High load or poor ventilation can trigger overheat shutdown."},
		},
		def: "Ask about torque mode, ID setup, U2D2 issues, or overheating.",
	},
	ContextROS2: {
		entries: []Entry{
			{"node", "Nodes are ROS2 processes that compute and exchange data."},
			{"topic", "Topics are channels for communication via publish/subscribe."},
			{"parameter", "Parameters configure node behavior at runtime."},
			{"rviz", "RViz is used to visualize robot state, transforms, and sensor streams."},
			{"urdf", "URDF defines robot geometry. Incorrect links or joints break simulation."},
		},
		def: "Ask about nodes, topics, parameters, RViz, or URDF issues.",
	},
	ContextDefault: {
		def: GlobalDefault,
	},
}

// Lookup returns the static reply for message in context c. It never fails:
// an unknown context falls back to the default table, and a message with no
// keyword gets the context's default reply.
func Lookup(c Context, message string) string {
	t, ok := knowledgeBase[c]
	if !ok {
		t = knowledgeBase[ContextDefault]
	}

	q := strings.ToLower(message)
	for _, e := range t.entries {
		if strings.Contains(q, e.Keyword) {
			return e.Reply
		}
	}
	if t.def != "" {
		return t.def
	}
	return GlobalDefault
}

// Greeting is the first message a chat shows for context c.
func Greeting(c Context) string {
	if t, ok := knowledgeBase[c]; ok && t.def != "" {
		return t.def
	}
	return GlobalDefault
}

// Keywords lists the keywords known for c in match order.
func Keywords(c Context) []string {
	t := knowledgeBase[c]
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Keyword
	}
	return out
}
