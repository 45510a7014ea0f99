package aiclient

// Context carries the ambient state the translator/error-analyzer uses to
// ground its output: the current working directory, recent shell output,
// and a short slice of recently-issued commands for this session.
type Context struct {
	WorkingDir     string   `json:"working_dir,omitempty"`
	RecentOutput   string   `json:"recent_output,omitempty"`
	RecentCommands []string `json:"recent_commands,omitempty"`
	OSHint         string   `json:"os_hint,omitempty"`
}

// TranslateResult is the shape produced by the AI translator capability for
// a single natural-language request.
type TranslateResult struct {
	Command           string   `json:"command"`
	Explanation       string   `json:"explanation,omitempty"`
	Confidence        float64  `json:"confidence"`
	Warning           string   `json:"warning,omitempty"`
	Alternatives      []string `json:"alternatives,omitempty"`
	RequiresSudo      bool     `json:"requires_sudo"`
	IsDangerous       bool     `json:"is_dangerous"`
	Category          string   `json:"category,omitempty"`
	EstimatedDuration string   `json:"estimated_duration,omitempty"`
}

// FixResult is the shape produced by the AI error-analysis capability given
// a failed command and its stderr.
type FixResult struct {
	FixedCommand   string `json:"fixed_command,omitempty"`
	ErrorCause     string `json:"error_cause,omitempty"`
	Solution       string `json:"solution,omitempty"`
	IsFixable      bool   `json:"is_fixable"`
	RequiredAction string `json:"required_action,omitempty"`
}

// Translator turns natural-language intent into a concrete shell command,
// and diagnoses a failed command's stderr into a candidate fix.
type Translator interface {
	Translate(userInput string, ctx *Context) (TranslateResult, error)
	AnalyzeError(command, stderr string, ctx *Context) (FixResult, error)
}

// Embedder turns text into fixed-dimension vectors for similarity search
// against stored history.
type Embedder interface {
	Embed(text string) ([]float32, error)
	EmbedBatch(texts []string) ([][]float32, error)
}
