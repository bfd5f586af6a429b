package conversation

import (
	"io"

	"gopkg.in/yaml.v3"
)

type Transcript struct {
	Messages []Message `yaml:"messages"`
}

// WriteTranscript prints the conversation as YAML.
func WriteTranscript(w io.Writer, c Conversation) error {
	data, err := yaml.Marshal(Transcript{Messages: c.Messages()})
	if err != nil {
		return err
	}
	if _, err = w.Write(data); err != nil {
		return err
	}
	return nil
}
