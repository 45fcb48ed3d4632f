package server

import "github.com/EchoCog/atomspace/core/atomspace"

// atomDTO is the wire representation of one atom, returned by every
// endpoint that surfaces atom content to a client.
type atomDTO struct {
	Handle     string   `json:"handle"`
	Type       string   `json:"type"`
	Name       string   `json:"name,omitempty"`
	Outgoing   []string `json:"outgoing,omitempty"`
	Strength   float64  `json:"strength"`
	Confidence float64  `json:"confidence"`
	STI        int16    `json:"sti"`
	LTI        int16    `json:"lti"`
	VLTI       bool     `json:"vlti"`
}

func toDTO(a *atomspace.Atom) atomDTO {
	tv := a.TruthValue()
	av := a.AttentionValue()
	dto := atomDTO{
		Handle:     string(a.Handle()),
		Type:       a.Type().String(),
		Name:       a.Name(),
		Strength:   tv.Strength,
		Confidence: tv.Confidence,
		STI:        av.STI,
		LTI:        av.LTI,
		VLTI:       av.VLTI,
	}
	for _, o := range a.Outgoing() {
		dto.Outgoing = append(dto.Outgoing, string(o))
	}
	return dto
}

// addNodeRequest is the body of POST /atoms/nodes.
type addNodeRequest struct {
	Type       string   `json:"type" binding:"required"`
	Name       string   `json:"name" binding:"required"`
	Strength   *float64 `json:"strength,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// addLinkRequest is the body of POST /atoms/links.
type addLinkRequest struct {
	Type       string   `json:"type" binding:"required"`
	Outgoing   []string `json:"outgoing" binding:"required"`
	Strength   *float64 `json:"strength,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func (r addNodeRequest) truthValue() *atomspace.TruthValue {
	if r.Strength == nil && r.Confidence == nil {
		return nil
	}
	tv := atomspace.DefaultTruthValue
	if r.Strength != nil {
		tv.Strength = *r.Strength
	}
	if r.Confidence != nil {
		tv.Confidence = *r.Confidence
	}
	return &tv
}

func (r addLinkRequest) truthValue() *atomspace.TruthValue {
	if r.Strength == nil && r.Confidence == nil {
		return nil
	}
	tv := atomspace.DefaultTruthValue
	if r.Strength != nil {
		tv.Strength = *r.Strength
	}
	if r.Confidence != nil {
		tv.Confidence = *r.Confidence
	}
	return &tv
}

// stimulateRequest is the body of POST /attention/stimulate.
type stimulateRequest struct {
	Handle string `json:"handle" binding:"required"`
	Amount int16  `json:"amount" binding:"required"`
	Clamp  bool   `json:"clamp"`
}
