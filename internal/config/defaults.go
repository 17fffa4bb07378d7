package config

const (
	defaultConfigPath           = "~/.config/diffusedbrush/config.toml"
	defaultDataDir              = "~/.local/share/diffusedbrush"
	defaultLogDir               = "~/.local/share/diffusedbrush/logs"
	defaultStoreBackend         = "json"
	defaultQueueFile            = "reddit_submissions.json"
	defaultLedgerFile           = "reddit_posts.json"
	defaultSQLiteFile           = "diffusedbrush.db"
	defaultRedditAuthURL        = "https://www.reddit.com/api/v1/access_token"
	defaultRedditBaseURL        = "https://oauth.reddit.com"
	defaultRedditUserAgent      = "diffusedbrush-bot/0.2"
	defaultRedditRPM            = 60
	defaultRedditTimeout        = 15
	defaultSubjectPrefix        = "SUBJECT: "
	defaultAcceptedMarker       = "SUBJECT ACCEPTED"
	defaultPostedMarker         = "IMAGE POSTED: "
	defaultRemovedMarker        = "IMAGE REMOVED: "
	defaultApproveDelaySeconds  = 10
	defaultResolveAttempts      = 3
	defaultResolveDelaySeconds  = 5
	defaultRecoveryLookback     = 10
	defaultStabilityBaseURL     = "https://api.stability.ai"
	defaultStabilityEngine      = "stable-diffusion-512-v2-1"
	defaultStabilitySteps       = 35
	defaultStabilityCFGScale    = 10
	defaultStabilitySize        = 512
	defaultStabilityMaxAttempts = 3
	defaultStabilityTimeout     = 120
	defaultImgurBaseURL         = "https://api.imgur.com"
	defaultImgurTimeout         = 30
	defaultMinKeywords          = 2
	defaultMaxKeywords          = 4
	defaultQualitySuffix        = "highly detailed, trending on artstation"
	defaultNotifyTimeout        = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Store: Store{
			Backend:    defaultStoreBackend,
			QueueFile:  defaultQueueFile,
			LedgerFile: defaultLedgerFile,
			SQLitePath: defaultSQLiteFile,
		},
		Reddit: Reddit{
			AuthURL:           defaultRedditAuthURL,
			BaseURL:           defaultRedditBaseURL,
			UserAgent:         defaultRedditUserAgent,
			RequestsPerMinute: defaultRedditRPM,
			TimeoutSeconds:    defaultRedditTimeout,
		},
		Markers: Markers{
			SubjectPrefix: defaultSubjectPrefix,
			Accepted:      defaultAcceptedMarker,
			Posted:        defaultPostedMarker,
			Removed:       defaultRemovedMarker,
		},
		Publish: Publish{
			Approve:             true,
			ApproveDelaySeconds: defaultApproveDelaySeconds,
			ResolveAttempts:     defaultResolveAttempts,
			ResolveDelaySeconds: defaultResolveDelaySeconds,
			RecoveryLookback:    defaultRecoveryLookback,
		},
		Stability: Stability{
			BaseURL:        defaultStabilityBaseURL,
			Engine:         defaultStabilityEngine,
			Steps:          defaultStabilitySteps,
			CFGScale:       defaultStabilityCFGScale,
			Width:          defaultStabilitySize,
			Height:         defaultStabilitySize,
			Samples:        1,
			MaxAttempts:    defaultStabilityMaxAttempts,
			TimeoutSeconds: defaultStabilityTimeout,
		},
		Imgur: Imgur{
			BaseURL:        defaultImgurBaseURL,
			TimeoutSeconds: defaultImgurTimeout,
		},
		Prompt: Prompt{
			MinKeywords:   defaultMinKeywords,
			MaxKeywords:   defaultMaxKeywords,
			QualitySuffix: defaultQualitySuffix,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Accepted:       true,
			Published:      true,
			Removed:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
