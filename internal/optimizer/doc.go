// Package optimizer rewrites canonical plans with an ordered list of rules.
//
// ARCHITECTURE:
//
// Worklist:
// The optimizer seeds a Queue with every rule, in order, applied to the plan
// root. It then pops one (rule, node) entry at a time and executes it. A rule
// may push further entries, at the front to run next or at the back to run
// after the rest, which gives fixpoint-style rewriting without recursion.
//
// Termination:
// The loop ends when the queue is empty, when the query context reports an
// error, when the context.Context is done, or when the number of rule
// applications reaches the configured cap (rule-limit-exceeded).
//
// Rules:
// Rules are stateless values and are shared across concurrent executions.
// They operate only on the plan tree and the schemata, never on row data.
//
// DEFAULT RULE ORDER (significant):
//  1. ReplaceViews          inline view definitions
//  2. AddAccessNodes        ACCESS above every SOURCE, including inlined ones
//  3. PushSelectCriteria    move SELECT below joins, record ACCESS_CRITERIA
//  4. ChooseJoinAlgorithm   HASH for equi-joins, NESTED_LOOP otherwise
//  5. PushSortBelowProject  sort before projecting away ordering columns
//  6. RaiseDuplicateRemoval DUPLICATE_REMOVAL directly above SORT
//  7. ReplaceEmptyLimits    LIMIT 0 becomes an empty source
package optimizer
