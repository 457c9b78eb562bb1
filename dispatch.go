package cad

// ApplyEntityCommand applies a single decoded Command that targets the
// entity store (everything except the text-editing ops, which the text
// subsystem owns — see Engine.ApplyCommandBuffer). It is the seam between
// the wire format and Store mutation: decode here, mutate there.
func (s *Store) ApplyEntityCommand(c Command) *Error {
	switch c.Op {
	case OpClearAll:
		s.Clear()
		return nil

	case OpDeleteEntity:
		s.Delete(c.ID)
		return nil

	case OpSetViewScale:
		scale, derr := decodeViewScalePayload(c.Payload)
		if derr != nil {
			return derr
		}
		s.SetViewScale(scale)
		return nil

	case OpSetDrawOrder:
		ids, derr := decodeSetDrawOrderPayload(c.Payload)
		if derr != nil {
			return derr
		}
		s.SetDrawOrder(ids)
		return nil

	case OpUpsertRect:
		e, derr := decodeRectPayload(c.Payload)
		if derr != nil {
			return derr
		}
		e.ID = c.ID
		s.UpsertRect(e)
		return nil

	case OpUpsertLine:
		e, derr := decodeLinePayload(c.Payload)
		if derr != nil {
			return derr
		}
		e.ID = c.ID
		s.UpsertLine(e)
		return nil

	case OpUpsertPolyline:
		d, derr := decodePolylinePayload(c.Payload)
		if derr != nil {
			return derr
		}
		if len(d.Points) < 2 {
			// A polyline collapsing below 2 points is a delete, not a
			// degenerate upsert.
			s.DeleteIfPresent(c.ID)
			return nil
		}
		d.Style.ID = c.ID
		s.UpsertPolylinePoints(c.ID, d.Points, d.Style)
		return nil

	case OpUpsertCircle:
		e, derr := decodeCirclePayload(c.Payload)
		if derr != nil {
			return derr
		}
		e.ID = c.ID
		s.UpsertCircle(e)
		return nil

	case OpUpsertPolygon:
		e, derr := decodePolygonPayload(c.Payload)
		if derr != nil {
			return derr
		}
		e.ID = c.ID
		s.UpsertPolygon(e)
		return nil

	case OpUpsertArrow:
		e, derr := decodeArrowPayload(c.Payload)
		if derr != nil {
			return derr
		}
		e.ID = c.ID
		s.UpsertArrow(e)
		return nil

	case OpUpsertSymbol:
		e, derr := decodeSymbolPayload(c.Payload)
		if derr != nil {
			return derr
		}
		e.ID = c.ID
		s.UpsertSymbol(e)
		return nil

	case OpUpsertNode:
		e, derr := decodeNodePayload(c.Payload)
		if derr != nil {
			return derr
		}
		e.ID = c.ID
		s.UpsertNode(e)
		return nil

	case OpUpsertConduit:
		e, derr := decodeConduitPayload(c.Payload)
		if derr != nil {
			return derr
		}
		e.ID = c.ID
		s.UpsertConduit(e)
		return nil

	case OpUpsertText:
		e, derr := decodeTextPayload(c.Payload)
		if derr != nil {
			return derr
		}
		e.ID = c.ID
		s.UpsertText(e)
		return nil

	default:
		return newErr("ApplyEntityCommand", KindUnknownCommand, "op %d is not an entity command", c.Op)
	}
}

// isTextEditOp reports whether c targets the text subsystem rather than
// the entity store directly.
func isTextEditOp(op Op) bool {
	switch op {
	case OpInsertContent, OpDeleteContent, OpSetCaret, OpSetSelection, OpApplyStyle, OpSetAlign:
		return true
	default:
		return false
	}
}
