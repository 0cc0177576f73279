package video

// spritePriority resolves per-pixel sprite ownership for one scanline
// using the DMG's (non-CGB) priority rule: lower X coordinate wins, ties
// broken by lower OAM index. Tracking ownership directly avoids sorting
// sprites before each scanline's draw pass.
//
// Reference: https://gbdev.io/pandocs/OAM.html#drawing-priority
type spritePriority struct {
	ownerIndex [FramebufferWidth]int
	ownerX     [FramebufferWidth]int
}

func (s *spritePriority) clear() {
	for i := range s.ownerIndex {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0xFF
	}
}

func (s *spritePriority) tryClaim(pixelX, spriteIndex, spriteX int) {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return
	}

	currentOwner := s.ownerIndex[pixelX]
	if currentOwner == -1 {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		return
	}

	currentX := s.ownerX[pixelX]
	if spriteX < currentX || (spriteX == currentX && spriteIndex < currentOwner) {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
	}
}

func (s *spritePriority) owner(pixelX int) int {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1
	}
	return s.ownerIndex[pixelX]
}
