package domain

import "time"

// RetrySchedule — конечная последовательность пауз между повторами.
// Расписание расходуется разрушающе: каждый Next снимает голову списка,
// поэтому одно расписание, переданное по цепочке вызовов, ограничивает
// суммарное время ожидания независимо от причины повторов.
type RetrySchedule []time.Duration

// Next снимает следующую паузу из расписания. Второе значение false
// означает, что попытки исчерпаны.
func (s *RetrySchedule) Next() (time.Duration, bool) {
	if s == nil || len(*s) == 0 {
		return 0, false
	}
	wait := (*s)[0]
	*s = (*s)[1:]
	return wait, true
}

// Remaining возвращает количество оставшихся повторов.
func (s RetrySchedule) Remaining() int {
	return len(s)
}

// DefaultRetrySchedule — основное расписание подтверждения состояния заказа:
// быстрые повторы вначале, затем редкие. Суммарно около 30 секунд.
func DefaultRetrySchedule() RetrySchedule {
	return RetrySchedule{
		0,
		500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond,
		time.Second, time.Second, time.Second, time.Second, time.Second,
		3 * time.Second, 3 * time.Second, 3 * time.Second,
		5 * time.Second, 5 * time.Second,
	}
}

// CommandRetrySchedule — расписание для отправки команд (короче основного).
func CommandRetrySchedule() RetrySchedule {
	return RetrySchedule{0, time.Second, time.Second, time.Second, 3 * time.Second, 5 * time.Second}
}

// TokenRetrySchedule — расписание для команды добавления токена.
func TokenRetrySchedule() RetrySchedule {
	return RetrySchedule{0, time.Second, time.Second, time.Second}
}

// PaymentRetrySchedule — короткое расписание для создания cash/pin платежей.
func PaymentRetrySchedule() RetrySchedule {
	return RetrySchedule{0, 500 * time.Millisecond, time.Second}
}

// NoRetry — пустое расписание: единственная попытка без повторов.
func NoRetry() RetrySchedule {
	return RetrySchedule{}
}
