package services

import "time"

// Consultation hours: hourly slots from 09:00 up to but excluding 17:00.
const (
	horaApertura = 9
	horaCierre   = 17
	slotDuracion = time.Hour
)

// AvailableSlots returns the start times of the free slots on a given day,
// removing every slot that overlaps an already booked cita. Pure range
// arithmetic; callers supply the booked start times.
func AvailableSlots(day time.Time, booked []time.Time) []time.Time {
	var free []time.Time
	for h := horaApertura; h < horaCierre; h++ {
		slot := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, day.Location())
		slotEnd := slot.Add(slotDuracion)

		taken := false
		for _, b := range booked {
			bEnd := b.Add(slotDuracion)
			if slot.Before(bEnd) && b.Before(slotEnd) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, slot)
		}
	}
	return free
}
