package forecast

// concurrent.go — worker pool para proyectar deals en paralelo.
//
// La proyección por deal no tiene dependencias cruzadas y la agregación
// es una suma conmutativa, así que el orden de los resultados no importa.
// Todos los workers comparten el mismo "hoy" y la misma configuración,
// lo que mantiene el resultado internamente consistente.

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// projectDealsConcurrent proyecta todos los deals usando un worker pool.
// Si workers <= 0 usa runtime.NumCPU().
func projectDealsConcurrent(
	_ context.Context,
	engine *Engine,
	today time.Time,
	days []time.Time,
	deals []weightedDeal,
	workers int,
) [][]stageQty {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(deals) {
		workers = len(deals)
	}
	if workers <= 1 {
		// Snapshots chicos: el pool no paga su overhead.
		out := make([][]stageQty, 0, len(deals))
		for _, wd := range deals {
			out = append(out, engine.projectDeal(wd, today, days))
		}
		return out
	}

	workCh := make(chan weightedDeal, len(deals))
	resultCh := make(chan []stageQty, len(deals))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for wd := range workCh {
				resultCh <- engine.projectDeal(wd, today, days)
			}
		}()
	}

	for _, wd := range deals {
		workCh <- wd
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := make([][]stageQty, 0, len(deals))
	for c := range resultCh {
		out = append(out, c)
	}
	return out
}
