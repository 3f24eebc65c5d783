package whisperx

// Config holds the WhisperX invocation settings.
type Config struct {
	// Model defaults to DefaultModel.
	Model string
	// Language is passed through lowercased; empty lets WhisperX detect it.
	Language    string
	CUDAEnabled bool
}

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "large-v3"

// Launcher is the command WhisperX runs under. uvx resolves the package on
// demand so no Python environment needs to be managed.
const Launcher = "uvx"

const (
	pypiIndex  = "https://pypi.org/simple"
	torchIndex = "https://download.pytorch.org/whl/cu128"
)

// decodeArgs pins the decoder so repeated attempts on one clip stay
// comparable; only the prompt varies between them.
var decodeArgs = []string{
	"--batch_size", "4",
	"--beam_size", "5",
	"--temperature", "0.0",
	"--vad_method", "silero",
	"--output_format", "json",
}

// deviceArgs returns the package index and device flags for the configured
// hardware.
func (c Config) deviceArgs() (index, device []string) {
	if c.CUDAEnabled {
		return []string{"--index-url", torchIndex, "--extra-index-url", pypiIndex},
			[]string{"--device", "cuda"}
	}
	return []string{"--index-url", pypiIndex},
		[]string{"--device", "cpu", "--compute_type", "float32"}
}
