package config

const (
	defaultConfigPath    = "~/.config/chunkscribe/config.toml"
	defaultStateDir      = "~/.local/share/chunkscribe"
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultAudioFormat   = "mp3"
	defaultAudioQuality  = "192k"
	defaultChunkMinutes  = 10
	defaultEngine        = EngineWhisper
	defaultLanguage      = LanguageAuto
	defaultModel         = "base"
	defaultOutputFormat  = "txt"
	defaultWhisperBinary = "whisper"
	defaultUVXBinary     = "uvx"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "whisper-1"
	defaultNtfyTimeout   = 10
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Engine names accepted by transcribe.engine.
const (
	EngineWhisper  = "whisper"
	EngineWhisperX = "whisperx"
	EngineOpenAI   = "openai"
)

// LanguageAuto requests language auto-detection from the transcription engine.
const LanguageAuto = "auto"

var (
	// AudioFormats lists the audio containers the converter and chunker can write.
	AudioFormats = []string{"mp3", "wav", "aac", "flac"}
	// TranscriptFormats lists the transcript renderings the transcriber can write.
	TranscriptFormats = []string{"txt", "json", "srt", "vtt"}
	// ModelSizes lists the Whisper model sizes accepted by the local engines.
	ModelSizes = []string{"tiny", "base", "small", "medium", "large"}
	// Engines lists the supported transcription engines.
	Engines = []string{EngineWhisper, EngineWhisperX, EngineOpenAI}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Convert: Convert{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			AudioFormat:   defaultAudioFormat,
			AudioQuality:  defaultAudioQuality,
		},
		Chunk: Chunk{
			DurationMinutes: defaultChunkMinutes,
			Format:          defaultAudioFormat,
		},
		Transcribe: Transcribe{
			Engine:        defaultEngine,
			Language:      defaultLanguage,
			Model:         defaultModel,
			Format:        defaultOutputFormat,
			WhisperBinary: defaultWhisperBinary,
			UVXBinary:     defaultUVXBinary,
			OpenAIBaseURL: defaultOpenAIBaseURL,
			OpenAIModel:   defaultOpenAIModel,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			OnSuccess:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
