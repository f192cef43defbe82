package chat

import (
	"fmt"
	"strings"
)

// DetectContext maps a lesson id to its knowledge base context by substring.
func DetectContext(lessonID string) Context {
	id := strings.ToLower(lessonID)
	switch {
	case strings.Contains(id, "servo"):
		return ContextServo
	case strings.Contains(id, "sensor"), strings.Contains(id, "ultrasonic"):
		return ContextUltrasonic
	case strings.Contains(id, "dxl"), strings.Contains(id, "dynamixel"):
		return ContextDynamixel
	case strings.Contains(id, "ros2"), strings.Contains(id, "rviz"), strings.Contains(id, "urdf"):
		return ContextROS2
	default:
		return ContextDefault
	}
}

// GeneralLesson is the lesson id used when a request names none.
const GeneralLesson = "general"

const systemPromptTemplate = `You are a robotics learning assistant for ForgeLabs.
Explain concepts clearly. Give step-by-step debugging help.
You may reference Arduino, ROS2, Dynamixel, kinematics, and electronics.
Lesson context: %s.`

// SystemPrompt builds the system instruction for lessonID.
func SystemPrompt(lessonID string) string {
	if lessonID == "" {
		lessonID = GeneralLesson
	}
	return fmt.Sprintf(systemPromptTemplate, lessonID)
}
