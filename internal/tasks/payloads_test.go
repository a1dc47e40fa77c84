package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewRenderTask(t *testing.T) {
	task, err := NewPreviewRenderTask(12, 3, "corr-1")
	require.NoError(t, err)
	assert.Equal(t, TypePreviewRender, task.Type())

	payload, err := ParsePreviewRenderPayload(task)
	require.NoError(t, err)
	assert.Equal(t, PreviewRenderPayload{ResumeID: 12, OwnerID: 3, CorrelationID: "corr-1"}, payload)
}

func TestParsePreviewRenderPayload_Invalid(t *testing.T) {
	_, err := ParsePreviewRenderPayload(asynq.NewTask(TypePreviewRender, []byte(`{`)))
	assert.Error(t, err)

	_, err = ParsePreviewRenderPayload(asynq.NewTask(TypePreviewRender, []byte(`{"owner_id":1}`)))
	assert.Error(t, err)
}

func TestPreviewObjectKey(t *testing.T) {
	assert.Equal(t, "resume-previews/3/12.html", PreviewObjectKey(3, 12))
}
