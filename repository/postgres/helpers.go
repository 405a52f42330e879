package postgres

func clampBatch(n int) int {
	if n <= 0 || n > 500 {
		return 500
	}
	return n
}
