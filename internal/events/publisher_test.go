package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "terminal.checkin.salida", Subject("terminal", KindVerification, "salida"))
	assert.Equal(t, "terminal.checkin.extra.llegada", Subject("terminal", KindExtra, "llegada"))
	assert.Equal(t, "coy_prod.checkin._", Subject("coy.prod", KindVerification, " "))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishCheckin(context.Background(), CheckinEvent{Kind: KindExtra}))
	p.Close()
}
