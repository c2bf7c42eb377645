package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsToolInvocationsSucceeded is base for counter metric for tool invocations succeeded
	StatsToolInvocationsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_invocations_succeeded",
		Help:         "stats_tool_invocations_succeeded provides total tool invocations succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolInvocationsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_invocations_failed",
		Help:         "stats_tool_invocations_failed provides total tool invocations failed",
		RequiredTags: []string{"tool"},
	}

	// StatsToolInvocationsRejected counts invocations ended by invalid input
	StatsToolInvocationsRejected = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_invocations_rejected",
		Help:         "stats_tool_invocations_rejected provides total tool invocations rejected due to invalid input",
		RequiredTags: []string{"tool"},
	}

	StatsTranscriptionBytesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_transcription_bytes_sent",
		Help:         "stats_transcription_bytes_sent provides total audio bytes sent to transcription service",
		RequiredTags: []string{"model"},
	}

	StatsFileBytesPrepared = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_file_bytes_prepared",
		Help:         "stats_file_bytes_prepared provides total bytes of prepared files",
		RequiredTags: []string{"file_type"},
	}
)

// Perf
var (
	PerfToolInvocation = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_invocation",
		Help:         "perf_tool_invocation provides duration of tool invocation",
		RequiredTags: []string{"tool"},
	}

	PerfTranscriptionRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_transcription_request",
		Help:         "perf_transcription_request provides duration of transcription service request",
		RequiredTags: []string{"model"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfToolInvocation,
	&PerfTranscriptionRequest,
	&StatsFileBytesPrepared,
	&StatsToolInvocationsFailed,
	&StatsToolInvocationsRejected,
	&StatsToolInvocationsSucceeded,
	&StatsTranscriptionBytesSent,
}
