package patient

import (
	"sort"

	"github.com/jwalitptl/hms-api/internal/model"
)

func sortByQueue(patients []*model.Patient) {
	sort.SliceStable(patients, func(i, j int) bool {
		return patients[i].QueueNumber < patients[j].QueueNumber
	})
}
