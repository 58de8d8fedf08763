package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageIDs(stages []Stage) []string {
	ids := make([]string, len(stages))
	for i, s := range stages {
		ids[i] = s.ID
	}
	return ids
}

func TestOrderCatalog(t *testing.T) {
	ordered, err := Order(Catalog())
	require.NoError(t, err)

	assert.Equal(t, []string{
		TerraformState,
		Infrastructure,
		KubernetesInitialize,
		KubernetesIngress,
		KubernetesKeycloak,
		KeycloakConfiguration,
		KubernetesServices,
		Extensions,
	}, stageIDs(ordered))
}

func TestOrderBreaksTiesOnNumberThenID(t *testing.T) {
	// Three independent roots declared out of order.
	stages := []Stage{
		{Number: 3, ID: "03-c"},
		{Number: 1, ID: "01-b"},
		{Number: 1, ID: "01-a"},
		{Number: 2, ID: "02-d", DependsOn: []string{"01-a"}},
	}

	for range [20]struct{}{} {
		ordered, err := Order(stages)
		require.NoError(t, err)
		assert.Equal(t, []string{"01-a", "01-b", "02-d", "03-c"}, stageIDs(ordered))
	}
}

func TestOrderRejectsCycle(t *testing.T) {
	stages := []Stage{
		{Number: 1, ID: "01-a", DependsOn: []string{"02-b"}},
		{Number: 2, ID: "02-b", DependsOn: []string{"01-a"}},
		{Number: 3, ID: "03-c"},
	}

	_, err := Order(stages)
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Contains(t, err.Error(), "01-a")
	assert.Contains(t, err.Error(), "02-b")
	require.GreaterOrEqual(t, len(cycleErr.Path), 3)
	assert.Equal(t, cycleErr.Path[0], cycleErr.Path[len(cycleErr.Path)-1], "path closes the loop")
}

func TestOrderRejectsDanglingDependency(t *testing.T) {
	stages := []Stage{
		{Number: 1, ID: "01-a", DependsOn: []string{"00-missing"}},
	}

	_, err := Order(stages)
	require.Error(t, err)

	var catErr *CatalogError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, "01-a", catErr.StageID)
	assert.Contains(t, catErr.Reason, "00-missing")
}

func TestOrderRejectsDuplicateIDs(t *testing.T) {
	stages := []Stage{
		{Number: 1, ID: "01-a"},
		{Number: 2, ID: "01-a"},
	}

	_, err := Order(stages)
	var catErr *CatalogError
	require.ErrorAs(t, err, &catErr)
	assert.Contains(t, catErr.Reason, "duplicate")
}
