package content

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
)

func TestElementJSONRoundTrip(t *testing.T) {
	elements := []Element{
		Paragraph("hello world"),
		Media(KindImage, 12, "a sunset"),
		LegacyImage(7, "old cover"),
		Media(KindAudio, 3, ""),
		Media(KindVideo, 4, "battle scene"),
		Media(KindDocument, 5, "notes"),
	}
	data, err := json.Marshal(elements)
	require.NoError(t, err)

	var decoded []Element
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, elements, decoded)
}

func TestElementWireFormat(t *testing.T) {
	data, err := json.Marshal(Paragraph("A"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"paragraph","content":"A"}`, string(data))

	data, err = json.Marshal(Media(KindImage, 9, "cap"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"image","media_id":9,"caption":"cap"}`, string(data))

	data, err = json.Marshal(LegacyImage(9, "cap"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"image","image_id":9,"caption":"cap"}`, string(data))
}

func TestElementDecodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown type", `{"type":"table","content":"x"}`},
		{"media without ref", `{"type":"image","caption":"x"}`},
		{"media with both refs", `{"type":"image","image_id":1,"media_id":2}`},
		{"image_id on audio", `{"type":"audio","image_id":1}`},
		{"paragraph with media ref", `{"type":"paragraph","content":"x","media_id":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var el Element
			err := json.Unmarshal([]byte(tt.in), &el)
			require.Error(t, err)
			require.True(t, errors.Is(err, appErr.ErrStorage), "want storage error, got %v", err)
		})
	}
}

func TestElementRef(t *testing.T) {
	if _, ok := Paragraph("x").Ref(); ok {
		t.Error("paragraph must not carry a media reference")
	}
	if ref, ok := Media(KindVideo, 42, "").Ref(); !ok || ref != 42 {
		t.Errorf("Ref() = %d, %v", ref, ok)
	}
	if ref, ok := LegacyImage(7, "").Ref(); !ok || ref != 7 {
		t.Errorf("Ref() = %d, %v", ref, ok)
	}
}
