package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/taller-iot/marcaje/pkg/domain/model"
	"github.com/taller-iot/marcaje/pkg/domain/types"
)

func TestParseBadgeScan(t *testing.T) {
	t.Run("extracts and normalizes the badge bytes", func(t *testing.T) {
		id, err := model.ParseBadgeScan("Marcaje RFID: 35 13 B5 B1")
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal(types.BadgeID("3513B5B1"))
	})

	t.Run("already-joined bytes pass through", func(t *testing.T) {
		id, err := model.ParseBadgeScan("Marcaje RFID: 85DB6DB1")
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal(types.BadgeID("85DB6DB1"))
	})

	t.Run("unrelated message fails with the payload sentinel", func(t *testing.T) {
		_, err := model.ParseBadgeScan("Puerta abierta ID: 4")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrUnparsablePayload)).True()
	})
}

func TestParseAccessGranted(t *testing.T) {
	t.Run("extracts the sensor ID", func(t *testing.T) {
		sensorID, err := model.ParseAccessGranted("Puerta abierta ID: 4")
		gt.NoError(t, err).Required()
		gt.Value(t, sensorID).Equal(types.SensorID(4))
	})

	t.Run("unrelated message fails", func(t *testing.T) {
		_, err := model.ParseAccessGranted("Marcaje RFID: 3513B5B1")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrUnparsablePayload)).True()
	})
}

func TestIsAccessDenied(t *testing.T) {
	gt.Bool(t, model.IsAccessDenied("Intento fallido huella")).True()
	gt.Bool(t, model.IsAccessDenied("Huella desconocida")).True()
	gt.Bool(t, model.IsAccessDenied("Puerta abierta ID: 4")).False()
	gt.Bool(t, model.IsAccessDenied("")).False()
}
